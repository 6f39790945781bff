// Package coinbasepro implements the exchange.Client interface for the
// Coinbase Pro REST API.
//
// Requests are signed with HMAC-SHA256 over the base64-decoded secret and
// list endpoints are walked with the CB-AFTER cursor header.
//
// Example usage:
//
//	config := core.DefaultConfig(core.ExchangeCoinbasePro).WithCredentials(&core.Credentials{
//		APIKey:     "key",
//		SecretKey:  "base64-secret",
//		Passphrase: "passphrase",
//	})
//	client, err := coinbasepro.New(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	fills, err := client.History(ctx, "BTC-USD")
package coinbasepro
