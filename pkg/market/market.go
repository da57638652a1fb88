package market

import (
	"time"

	"perpdesk/pkg/num"
)

// Market is the hedger's reference data for one tradable symbol. It is
// immutable within a session and keyed by Id (contract calls) and by Name
// (price stream, display).
type Market struct {
	Id     int64
	Name   string // unique key, e.g. "BTCUSDT"
	Symbol string // display, e.g. "BTC"
	Asset  string // quote asset, e.g. "USDT"

	PricePrecision    int32 // decimal rounding places for prices
	QuantityPrecision int32 // decimal rounding places for sizes

	TradingFee              num.Value // fraction, 0 <= fee < 1
	MaxLeverage             int64
	MinAcceptableQuoteValue num.Value // min notional to keep a position open
}

func New(id int64, name, symbol, asset string) *Market {
	return &Market{
		Id:     id,
		Name:   name,
		Symbol: symbol,
		Asset:  asset,
	}
}

// Data is the latest-known live snapshot for one market name. The price
// stream overwrites it whole on every tick; there is no ordering guarantee
// against quote refreshes and none is needed.
type Data struct {
	MarkPrice       num.Value
	IndexPrice      num.Value
	FundingRate     num.Value
	NextFundingTime time.Time
}
