package kraken

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"

	"ledger/pkg/core"
)

// Normalizer maps Kraken response envelopes to core records. Result maps
// are walked with sonic/ast so upstream key order is kept.
type Normalizer struct{}

// NewNormalizer returns a stateless Kraken normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

type envelope struct {
	Error []string `json:"error"`
}

type assetPair struct {
	WSName   string `json:"wsname"`
	Base     string `json:"base"`
	OrderMin string `json:"ordermin"`
}

type trade struct {
	Pair  string      `json:"pair"`
	Type  string      `json:"type"`
	Price string      `json:"price"`
	Vol   string      `json:"vol"`
	Time  json.Number `json:"time"`
}

type ledgerEntry struct {
	Type   string      `json:"type"`
	Asset  string      `json:"asset"`
	Amount string      `json:"amount"`
	Fee    string      `json:"fee"`
	Time   json.Number `json:"time"`
}

type ticker struct {
	Ask  []string `json:"a"`
	Bid  []string `json:"b"`
	Last []string `json:"c"`
}

type addOrder struct {
	TxID []string `json:"txid"`
}

type orderInfo struct {
	Descr struct {
		Pair string `json:"pair"`
		Type string `json:"type"`
	} `json:"descr"`
	Price  string      `json:"price"`
	Vol    string      `json:"vol"`
	OpenTM json.Number `json:"opentm"`
}

// Error reports a non-200 page or a non-empty error array.
func (n *Normalizer) Error(page *core.Page) error {
	var env envelope
	_ = page.Decode(&env)
	if !page.OK() {
		return core.NewUpstreamError(Name, page, core.ErrorTypeFromStatus(page.StatusCode), strings.Join(env.Error, "; "))
	}
	if len(env.Error) == 0 {
		return nil
	}
	errorType, code := Classify(env.Error[0])
	return core.NewUpstreamError(Name, page, errorType, strings.Join(env.Error, "; ")).WithCode(code)
}

// Classify maps a Kraken error string to an error category by prefix.
func Classify(msg string) (core.ErrorType, core.ErrorCode) {
	switch {
	case strings.HasPrefix(msg, "EAPI:Invalid key"),
		strings.HasPrefix(msg, "EAPI:Invalid signature"),
		strings.HasPrefix(msg, "EAPI:Invalid nonce"):
		return core.ErrorTypeAuthentication, core.ErrCodeAuth
	case strings.HasPrefix(msg, "EAPI:Rate limit"), strings.HasPrefix(msg, "EOrder:Rate limit"):
		return core.ErrorTypeRateLimit, core.ErrCodeRateLimit
	case strings.HasPrefix(msg, "EOrder:Insufficient funds"):
		return core.ErrorTypeInsufficientFunds, core.ErrCodeInsufficientFunds
	case strings.HasPrefix(msg, "EOrder:"):
		return core.ErrorTypeInvalidOrder, core.ErrCodeInvalidOrder
	case strings.HasPrefix(msg, "EQuery:Unknown asset pair"):
		return core.ErrorTypeNotFound, core.ErrCodeInvalidSymbol
	}
	return core.ErrorTypeBadRequest, core.ErrCodeBadRequest
}

// Products maps the AssetPairs result, keeping the key order of the body.
func (n *Normalizer) Products(page *core.Page) ([]core.Product, error) {
	out := []core.Product{}
	err := n.each(page, func(key, raw string) error {
		var p assetPair
		if err := sonic.UnmarshalString(raw, &p); err != nil {
			return err
		}
		out = append(out, core.Product{ID: key, Display: p.WSName, Base: p.Base, MinSize: p.OrderMin})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Accounts maps the Balance result, dropping zero balances.
func (n *Normalizer) Accounts(page *core.Page) ([]core.Account, error) {
	out := []core.Account{}
	err := n.each(page, func(asset, raw string) error {
		var balance string
		if err := sonic.UnmarshalString(raw, &balance); err != nil {
			return err
		}
		if core.IsPositive(balance) {
			out = append(out, core.Account{Name: asset, Balance: balance})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Fills returns the trades of one result.trades page that belong to pair.
func (n *Normalizer) Fills(pair string) func(*core.Page) ([]core.Fill, error) {
	return func(page *core.Page) ([]core.Fill, error) {
		out := []core.Fill{}
		err := n.each(page, func(_, raw string) error {
			var t trade
			if err := sonic.UnmarshalString(raw, &t); err != nil {
				return err
			}
			if t.Pair != pair {
				return nil
			}
			ts, err := core.EpochToISO(t.Time.String())
			if err != nil {
				return err
			}
			out = append(out, core.Fill{ID: t.Pair, Side: t.Type, Price: t.Price, Size: t.Vol, Timestamp: ts})
			return nil
		}, "trades")
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Transfers returns the ledger entries of one result.ledger page whose
// asset is the product's base asset.
func (n *Normalizer) Transfers(pair string) func(*core.Page) ([]core.Transfer, error) {
	asset := strings.Split(pair, "Z")[0]
	return func(page *core.Page) ([]core.Transfer, error) {
		out := []core.Transfer{}
		err := n.each(page, func(_, raw string) error {
			var e ledgerEntry
			if err := sonic.UnmarshalString(raw, &e); err != nil {
				return err
			}
			if e.Asset != asset {
				return nil
			}
			ts, err := core.EpochToISO(e.Time.String())
			if err != nil {
				return err
			}
			out = append(out, core.Transfer{Type: e.Type, Currency: e.Asset, Amount: e.Amount, Fee: e.Fee, Timestamp: ts})
			return nil
		}, "ledger")
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Price reads result[pair]. Kraken may answer under its canonical pair
// name, so a single entry under another key is accepted as well.
func (n *Normalizer) Price(page *core.Page, pair string) (*core.Price, error) {
	var (
		t     ticker
		found bool
	)
	err := n.each(page, func(key, raw string) error {
		if found && key != pair {
			return nil
		}
		if err := sonic.UnmarshalString(raw, &t); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NewDecodeError(Name, page, errors.New("no ticker for "+pair))
	}
	return &core.Price{Bid: first(t.Bid), Ask: first(t.Ask), Last: first(t.Last)}, nil
}

// TxID returns the first transaction id of an AddOrder result.
func (n *Normalizer) TxID(page *core.Page) (string, error) {
	var res addOrder
	if err := n.decode(page, &res); err != nil {
		return "", err
	}
	if len(res.TxID) == 0 {
		return "", core.NewDecodeError(Name, page, errors.New("no txid in order result"))
	}
	return res.TxID[0], nil
}

// Order reads result[txid] of a QueryOrders page.
func (n *Normalizer) Order(page *core.Page, txid string) (*core.Order, error) {
	var (
		info  orderInfo
		found bool
	)
	err := n.each(page, func(key, raw string) error {
		if key != txid {
			return nil
		}
		found = true
		return sonic.UnmarshalString(raw, &info)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NewDecodeError(Name, page, errors.New("no order "+txid))
	}
	ts, err := core.EpochToISO(info.OpenTM.String())
	if err != nil {
		return nil, core.NewDecodeError(Name, page, err)
	}
	return &core.Order{
		ID:        info.Descr.Pair,
		Side:      info.Descr.Type,
		Price:     info.Price,
		Size:      info.Vol,
		Timestamp: ts,
	}, nil
}

// result returns the node at result.<keys...>. The node does not exist
// when the field is absent.
func (n *Normalizer) result(page *core.Page, keys ...string) (*ast.Node, error) {
	if err := n.Error(page); err != nil {
		return nil, err
	}
	root, err := sonic.Get(page.Body, "result")
	if err != nil {
		return nil, core.NewDecodeError(Name, page, err)
	}
	node := &root
	for _, key := range keys {
		node = node.Get(key)
	}
	return node, nil
}

// each calls fn for every member of result.<keys...> in upstream order.
func (n *Normalizer) each(page *core.Page, fn func(key, raw string) error, keys ...string) error {
	node, err := n.result(page, keys...)
	if err != nil {
		return err
	}
	if !node.Exists() {
		return nil
	}
	var fnErr error
	err = node.ForEach(func(path ast.Sequence, member *ast.Node) bool {
		raw, err := member.Raw()
		if err != nil {
			fnErr = err
			return false
		}
		key := ""
		if path.Key != nil {
			key = *path.Key
		}
		if err := fn(key, raw); err != nil {
			fnErr = err
			return false
		}
		return true
	})
	if err == nil {
		err = fnErr
	}
	if err != nil {
		return core.NewDecodeError(Name, page, err)
	}
	return nil
}

// empty reports whether result.<key> holds no members.
func (n *Normalizer) empty(page *core.Page, key string) bool {
	node, err := n.result(page, key)
	if err != nil || !node.Exists() {
		return err == nil
	}
	members := 0
	_ = node.ForEach(func(ast.Sequence, *ast.Node) bool {
		members++
		return false
	})
	return members == 0
}

func (n *Normalizer) decode(page *core.Page, v any) error {
	node, err := n.result(page)
	if err != nil {
		return err
	}
	raw, err := node.Raw()
	if err != nil {
		return core.NewDecodeError(Name, page, err)
	}
	if err := sonic.UnmarshalString(raw, v); err != nil {
		return core.NewDecodeError(Name, page, err)
	}
	return nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
