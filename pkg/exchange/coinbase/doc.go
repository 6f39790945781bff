// Package coinbase implements the exchange.Client interface for the
// Coinbase v2 retail API.
//
// Requests carry a dated CB-VERSION header and a hex HMAC-SHA256
// signature keyed with the raw secret. List endpoints are walked with
// starting_after, taken from the CB-AFTER header or the body's
// pagination block.
package coinbase
