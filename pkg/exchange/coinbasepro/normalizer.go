package coinbasepro

import (
	"fmt"
	"strings"

	"ledger/pkg/core"
)

// Normalizer maps Coinbase Pro response bodies to core records.
type Normalizer struct{}

// NewNormalizer returns a stateless Coinbase Pro normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

type apiError struct {
	Message string `json:"message"`
}

type product struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	BaseCurrency   string `json:"base_currency"`
	MinMarketFunds string `json:"min_market_funds"`
	BaseMinSize    string `json:"base_min_size"`
}

type account struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
}

type fill struct {
	ProductID string `json:"product_id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	CreatedAt string `json:"created_at"`
}

type transfer struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	AccountID  string         `json:"account_id"`
	Amount     string         `json:"amount"`
	CreatedAt  string         `json:"created_at"`
	CanceledAt *string        `json:"canceled_at"`
	Details    map[string]any `json:"details"`
}

type ticker struct {
	Bid   string `json:"bid"`
	Ask   string `json:"ask"`
	Price string `json:"price"`
}

type order struct {
	ProductID string `json:"product_id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	CreatedAt string `json:"created_at"`
}

// Error returns nil for a 200 page and an upstream error carrying the raw
// body otherwise.
func (n *Normalizer) Error(page *core.Page) error {
	if page.OK() {
		return nil
	}
	var e apiError
	_ = page.Decode(&e)
	return core.NewUpstreamError(Name, page, core.ErrorTypeFromStatus(page.StatusCode), e.Message)
}

// Products maps /products. MinSize falls back to base_min_size.
func (n *Normalizer) Products(page *core.Page) ([]core.Product, error) {
	var raw []product
	if err := n.decode(page, &raw); err != nil {
		return nil, err
	}
	out := make([]core.Product, 0, len(raw))
	for _, p := range raw {
		minSize := p.MinMarketFunds
		if minSize == "" {
			minSize = p.BaseMinSize
		}
		out = append(out, core.Product{
			ID:      p.ID,
			Display: p.DisplayName,
			Base:    p.BaseCurrency,
			MinSize: minSize,
		})
	}
	return out, nil
}

// Accounts maps /accounts, dropping balances that are not positive.
func (n *Normalizer) Accounts(page *core.Page) ([]core.Account, error) {
	raw, err := n.accounts(page)
	if err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(raw))
	for _, a := range raw {
		if !core.IsPositive(a.Available) {
			continue
		}
		out = append(out, core.Account{Name: a.Currency, Balance: a.Available})
	}
	return out, nil
}

func (n *Normalizer) accounts(page *core.Page) ([]account, error) {
	var raw []account
	if err := n.decode(page, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Fills maps one page of /fills.
func (n *Normalizer) Fills(page *core.Page) ([]core.Fill, error) {
	var raw []fill
	if err := n.decode(page, &raw); err != nil {
		return nil, err
	}
	out := make([]core.Fill, 0, len(raw))
	for _, f := range raw {
		out = append(out, core.Fill{
			ID:        f.ProductID,
			Side:      f.Side,
			Price:     f.Price,
			Size:      f.Size,
			Timestamp: f.CreatedAt,
		})
	}
	return out, nil
}

func (n *Normalizer) transfers(page *core.Page) ([]transfer, error) {
	var raw []transfer
	if err := n.decode(page, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Transfers joins transfers with the accounts holding the product's base
// currency, dropping canceled transfers.
func (n *Normalizer) Transfers(transfers []transfer, accounts []account, productID string) []core.Transfer {
	base, _, _ := strings.Cut(productID, "-")
	out := []core.Transfer{}
	for _, t := range transfers {
		if t.CanceledAt != nil && *t.CanceledAt != "" {
			continue
		}
		for _, a := range accounts {
			if a.ID != t.AccountID || !strings.Contains(base, a.Currency) {
				continue
			}
			out = append(out, core.Transfer{
				Type:      t.Type,
				Currency:  a.Currency,
				Amount:    t.Amount,
				Fee:       transferFee(t),
				Timestamp: t.CreatedAt,
			})
		}
	}
	return out
}

func transferFee(t transfer) string {
	fee, ok := t.Details["fee"]
	if !ok || fee == nil {
		return "0"
	}
	if s, ok := fee.(string); ok {
		return s
	}
	return fmt.Sprint(fee)
}

// Price maps a product ticker.
func (n *Normalizer) Price(page *core.Page) (*core.Price, error) {
	var raw ticker
	if err := n.decode(page, &raw); err != nil {
		return nil, err
	}
	return &core.Price{Bid: raw.Bid, Ask: raw.Ask, Last: raw.Price}, nil
}

// Order maps the order echoed by POST /orders.
func (n *Normalizer) Order(page *core.Page) (*core.Order, error) {
	var raw order
	if err := n.decode(page, &raw); err != nil {
		return nil, err
	}
	return &core.Order{
		ID:        raw.ProductID,
		Side:      raw.Side,
		Price:     raw.Price,
		Size:      raw.Size,
		Timestamp: raw.CreatedAt,
	}, nil
}

func (n *Normalizer) decode(page *core.Page, v any) error {
	if err := n.Error(page); err != nil {
		return err
	}
	if page.Empty() {
		return nil
	}
	if err := page.Decode(v); err != nil {
		return core.NewDecodeError(Name, page, err)
	}
	return nil
}
