package core

import (
	"bytes"
	"net/http"

	"github.com/bytedance/sonic"
)

// Product describes a tradable product or currency listed by an exchange.
type Product struct {
	ID      string `json:"id"`
	Display string `json:"display"`
	Base    string `json:"base"`
	MinSize string `json:"min-size"`
}

// Account is a single non-zero balance held on an exchange.
type Account struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// Fill is an executed trade belonging to the account.
type Fill struct {
	ID        string `json:"id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// Transfer is a deposit or withdrawal movement.
type Transfer struct {
	Type      string `json:"type"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	Timestamp string `json:"timestamp"`
}

// Price is a point-in-time quote for a product.
type Price struct {
	Bid  string `json:"bid"`
	Ask  string `json:"ask"`
	Last string `json:"last"`
}

// Order is the normalized view of a placed order.
type Order struct {
	ID        string `json:"id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// Ticker is a streamed quote update.
type Ticker struct {
	Product   string `json:"product"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	Last      string `json:"last"`
	Timestamp string `json:"timestamp"`
}

// TransferType selects the direction of a transfer listing.
type TransferType int

const (
	TransferDeposit TransferType = iota
	TransferWithdrawal
)

func (t TransferType) String() string {
	names := [...]string{"deposit", "withdrawal"}
	if t < 0 || int(t) >= len(names) {
		return "unknown"
	}
	return names[t]
}

// Page is one raw HTTP response. It is consumed immediately by a
// paginator or normalizer and never crosses the client boundary.
type Page struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the upstream answered 200.
func (p *Page) OK() bool {
	return p != nil && p.StatusCode == http.StatusOK
}

// Empty reports whether the body carries no records.
func (p *Page) Empty() bool {
	if p == nil {
		return true
	}
	b := bytes.TrimSpace(p.Body)
	switch string(b) {
	case "", "[]", "{}", "null":
		return true
	}
	return false
}

// Decode unmarshals the body into v.
func (p *Page) Decode(v any) error {
	return sonic.Unmarshal(p.Body, v)
}
