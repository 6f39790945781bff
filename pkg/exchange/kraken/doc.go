// Package kraken implements the exchange.Client interface for the Kraken
// REST API.
//
// Private calls are form encoded POSTs carrying a strictly increasing
// millisecond nonce and signed with HMAC-SHA512. History and ledger
// endpoints are walked by offset in fixed steps up to a ceiling.
//
// Example usage:
//
//	config := core.DefaultConfig(core.ExchangeKraken).WithCredentials(&core.Credentials{
//		APIKey:    "key",
//		SecretKey: "base64-secret",
//	})
//	client, err := kraken.New(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	balances, err := client.Accounts(ctx)
package kraken
