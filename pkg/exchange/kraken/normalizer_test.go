package kraken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

func page(body string) *core.Page {
	return &core.Page{StatusCode: 200, Body: []byte(body)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want core.ErrorType
	}{
		{"EAPI:Invalid key", core.ErrorTypeAuthentication},
		{"EAPI:Invalid signature", core.ErrorTypeAuthentication},
		{"EAPI:Invalid nonce", core.ErrorTypeAuthentication},
		{"EAPI:Rate limit exceeded", core.ErrorTypeRateLimit},
		{"EOrder:Rate limit exceeded", core.ErrorTypeRateLimit},
		{"EOrder:Insufficient funds", core.ErrorTypeInsufficientFunds},
		{"EOrder:Invalid price", core.ErrorTypeInvalidOrder},
		{"EQuery:Unknown asset pair", core.ErrorTypeNotFound},
		{"EGeneral:Invalid arguments", core.ErrorTypeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, _ := Classify(tt.msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizer_ErrorArrayOn200(t *testing.T) {
	n := NewNormalizer()
	body := `{"error":["EGeneral:Invalid arguments"]}`

	err := n.Error(page(body))

	require.Error(t, err)
	e, ok := core.AsExchangeError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeBadRequest, e.Type)
	assert.Equal(t, "EGeneral:Invalid arguments", e.Message)
	assert.Equal(t, body, string(e.Raw))
	assert.NoError(t, n.Error(page(`{"error":[],"result":{}}`)))
}

func TestNormalizer_ErrorStatus(t *testing.T) {
	err := NewNormalizer().Error(&core.Page{StatusCode: 502, Body: []byte("bad gateway")})

	e, ok := core.AsExchangeError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeServerError, e.Type)
	assert.Equal(t, "bad gateway", string(e.Raw))
}

func TestNormalizer_ProductsKeepOrder(t *testing.T) {
	products, err := NewNormalizer().Products(page(`{"error":[],"result":{
		"XXBTZUSD":{"wsname":"XBT/USD","base":"XXBT","ordermin":"0.0001"},
		"XETHZUSD":{"wsname":"ETH/USD","base":"XETH","ordermin":"0.01"},
		"ADAUSD":{"wsname":"ADA/USD","base":"ADA","ordermin":"10"}
	}}`))

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []string{"XXBTZUSD", "XETHZUSD", "ADAUSD"},
		[]string{products[0].ID, products[1].ID, products[2].ID})
	assert.Equal(t, core.Product{ID: "XXBTZUSD", Display: "XBT/USD", Base: "XXBT", MinSize: "0.0001"}, products[0])
}

func TestNormalizer_AccountsFilterZero(t *testing.T) {
	accounts, err := NewNormalizer().Accounts(page(`{"error":[],"result":{"XXBT":"0.5000","XETH":"0.0000000000","ZUSD":"12.30"}}`))

	require.NoError(t, err)
	assert.Equal(t, []core.Account{
		{Name: "XXBT", Balance: "0.5000"},
		{Name: "ZUSD", Balance: "12.30"},
	}, accounts)
}

func TestNormalizer_FillsFilterPair(t *testing.T) {
	fills, err := NewNormalizer().Fills("XXBTZUSD")(page(`{"error":[],"result":{"trades":{
		"T1":{"pair":"XXBTZUSD","type":"buy","price":"50000.0","vol":"0.01","time":1616663618.7007},
		"T2":{"pair":"XETHZUSD","type":"sell","price":"1800.0","vol":"1","time":1616663619}
	},"count":2}}`))

	require.NoError(t, err)
	assert.Equal(t, []core.Fill{
		{ID: "XXBTZUSD", Side: "buy", Price: "50000.0", Size: "0.01", Timestamp: "2021-03-25T09:13:38.7007Z"},
	}, fills)
}

func TestNormalizer_TransfersFilterAsset(t *testing.T) {
	transfers, err := NewNormalizer().Transfers("XXBTZUSD")(page(`{"error":[],"result":{"ledger":{
		"L1":{"type":"deposit","asset":"XXBT","amount":"0.5","fee":"0.0000","time":1616663618},
		"L2":{"type":"deposit","asset":"ZUSD","amount":"100","fee":"0","time":1616663619}
	},"count":2}}`))

	require.NoError(t, err)
	assert.Equal(t, []core.Transfer{
		{Type: "deposit", Currency: "XXBT", Amount: "0.5", Fee: "0.0000", Timestamp: "2021-03-25T09:13:38Z"},
	}, transfers)
}

func TestNormalizer_Price(t *testing.T) {
	n := NewNormalizer()
	body := `{"error":[],"result":{"XXBTZUSD":{"a":["50001.0","1","1.000"],"b":["50000.0","2","2.000"],"c":["50000.5","0.1"]}}}`

	exact, err := n.Price(page(body), "XXBTZUSD")
	require.NoError(t, err)
	assert.Equal(t, &core.Price{Bid: "50000.0", Ask: "50001.0", Last: "50000.5"}, exact)

	aliased, err := n.Price(page(body), "XBTUSD")
	require.NoError(t, err)
	assert.Equal(t, exact, aliased)

	_, err = n.Price(page(`{"error":[],"result":{}}`), "XBTUSD")
	assert.True(t, core.IsErrorCode(err, core.ErrCodeDecode))
}

func TestNormalizer_EmptyResult(t *testing.T) {
	n := NewNormalizer()

	assert.True(t, n.empty(page(`{"error":[],"result":{"trades":{},"count":0}}`), "trades"))
	assert.True(t, n.empty(page(`{"error":[],"result":{"count":0}}`), "trades"))
	assert.False(t, n.empty(page(`{"error":[],"result":{"trades":{"T1":{}}}}`), "trades"))
}
