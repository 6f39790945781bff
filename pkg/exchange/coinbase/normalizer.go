package coinbase

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"

	"ledger/pkg/core"
)

// Normalizer maps Coinbase v2 {"data": ...} envelopes to core records.
type Normalizer struct{}

// NewNormalizer returns a stateless Coinbase normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

type apiError struct {
	Errors []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors"`
}

type paginated struct {
	Pagination struct {
		NextStartingAfter *string `json:"next_starting_after"`
	} `json:"pagination"`
}

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// currencyCode accepts both "BTC" and {"code":"BTC",...}.
type currencyCode string

// UnmarshalJSON accepts the code as a bare string or as a {"code": ...} object.
func (c *currencyCode) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = currencyCode(s)
		return nil
	}
	var obj struct {
		Code string `json:"code"`
	}
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = currencyCode(obj.Code)
	return nil
}

type currency struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MinSize string `json:"min_size"`
}

type account struct {
	ID       string       `json:"id"`
	Currency currencyCode `json:"currency"`
	Balance  money        `json:"balance"`
}

type trade struct {
	ID        string `json:"id"`
	Resource  string `json:"resource"`
	Amount    money  `json:"amount"`
	Subtotal  money  `json:"subtotal"`
	UnitPrice *money `json:"unit_price"`
	CreatedAt string `json:"created_at"`
}

type transfer struct {
	Resource  string `json:"resource"`
	Amount    money  `json:"amount"`
	Fee       *money `json:"fee"`
	CreatedAt string `json:"created_at"`
}

// Error returns nil for a 2xx page; buys and sells answer 201 Created.
// Otherwise the first message of the errors array becomes the error
// message and the body is kept verbatim.
func (n *Normalizer) Error(page *core.Page) error {
	if page.OK() || page.StatusCode == http.StatusCreated {
		return nil
	}
	var e apiError
	_ = page.Decode(&e)
	var message string
	if len(e.Errors) > 0 {
		message = e.Errors[0].Message
	}
	return core.NewUpstreamError(Name, page, core.ErrorTypeFromStatus(page.StatusCode), message)
}

// Products maps /v2/currencies. The currency id is both ID and Base.
func (n *Normalizer) Products(page *core.Page) ([]core.Product, error) {
	raw, err := decodeData[[]currency](n, page)
	if err != nil {
		return nil, err
	}
	out := make([]core.Product, 0, len(raw))
	for _, c := range raw {
		out = append(out, core.Product{ID: c.ID, Display: c.Name, Base: c.ID, MinSize: c.MinSize})
	}
	return out, nil
}

// Accounts maps one page of /v2/accounts, dropping zero balances.
func (n *Normalizer) Accounts(page *core.Page) ([]core.Account, error) {
	raw, err := n.accounts(page)
	if err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(raw))
	for _, a := range raw {
		if core.IsPositive(a.Balance.Amount) {
			out = append(out, core.Account{Name: string(a.Currency), Balance: a.Balance.Amount})
		}
	}
	return out, nil
}

func (n *Normalizer) accounts(page *core.Page) ([]account, error) {
	return decodeData[[]account](n, page)
}

// Fills maps a page of buys or sells. Price is the unit price, or the
// subtotal when the upstream omits it.
func (n *Normalizer) Fills(productID string) func(*core.Page) ([]core.Fill, error) {
	return func(page *core.Page) ([]core.Fill, error) {
		raw, err := decodeData[[]trade](n, page)
		if err != nil {
			return nil, err
		}
		out := make([]core.Fill, 0, len(raw))
		for _, t := range raw {
			out = append(out, core.Fill{
				ID:        productID,
				Side:      t.Resource,
				Price:     tradePrice(t),
				Size:      t.Amount.Amount,
				Timestamp: t.CreatedAt,
			})
		}
		return out, nil
	}
}

func tradePrice(t trade) string {
	if t.UnitPrice != nil && t.UnitPrice.Amount != "" {
		return t.UnitPrice.Amount
	}
	return t.Subtotal.Amount
}

// Transfers maps one page of deposits or withdrawals. A missing fee is "0".
func (n *Normalizer) Transfers(page *core.Page) ([]core.Transfer, error) {
	raw, err := decodeData[[]transfer](n, page)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transfer, 0, len(raw))
	for _, t := range raw {
		fee := "0"
		if t.Fee != nil && t.Fee.Amount != "" {
			fee = t.Fee.Amount
		}
		out = append(out, core.Transfer{
			Type:      t.Resource,
			Currency:  t.Amount.Currency,
			Amount:    t.Amount.Amount,
			Fee:       fee,
			Timestamp: t.CreatedAt,
		})
	}
	return out, nil
}

// Amount reads data.amount of a buy, sell or spot price page.
func (n *Normalizer) Amount(page *core.Page) (string, error) {
	m, err := decodeData[money](n, page)
	if err != nil {
		return "", err
	}
	return m.Amount, nil
}

// Order maps the buy or sell created by an order.
func (n *Normalizer) Order(page *core.Page) (*core.Order, error) {
	t, err := decodeData[trade](n, page)
	if err != nil {
		return nil, err
	}
	return &core.Order{
		ID:        t.ID,
		Side:      t.Resource,
		Price:     tradePrice(t),
		Size:      t.Amount.Amount,
		Timestamp: t.CreatedAt,
	}, nil
}

// empty reports whether the page has no data members.
func (n *Normalizer) empty(page *core.Page) bool {
	if page.Empty() {
		return true
	}
	data, err := sonic.Get(page.Body, "data")
	if err != nil || !data.Exists() {
		return true
	}
	members := 0
	_ = data.ForEach(func(ast.Sequence, *ast.Node) bool {
		members++
		return false
	})
	return members == 0
}

func (n *Normalizer) nextStartingAfter(page *core.Page) string {
	var p paginated
	if err := page.Decode(&p); err != nil || p.Pagination.NextStartingAfter == nil {
		return ""
	}
	return *p.Pagination.NextStartingAfter
}

func decodeData[T any](n *Normalizer, page *core.Page) (T, error) {
	var env struct {
		Data T `json:"data"`
	}
	if err := n.Error(page); err != nil {
		return env.Data, err
	}
	if page.Empty() {
		return env.Data, nil
	}
	if err := page.Decode(&env); err != nil {
		return env.Data, core.NewDecodeError(Name, page, err)
	}
	return env.Data, nil
}
