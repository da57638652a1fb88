package hedger

// REST response shapes of the hedger service. Numeric fields arrive as
// plain decimal strings; the client parses them once at the boundary.

type symbolsResponse struct {
	Count   int              `json:"count"`
	Symbols []symbolResponse `json:"symbols"`
}

type symbolResponse struct {
	SymbolId                int64  `json:"symbol_id"`
	Name                    string `json:"name"`
	Symbol                  string `json:"symbol"`
	Asset                   string `json:"asset"`
	PricePrecision          int32  `json:"price_precision"`
	QuantityPrecision       int32  `json:"quantity_precision"`
	TradingFee              string `json:"trading_fee"`
	MaxLeverage             int64  `json:"max_leverage"`
	MinAcceptableQuoteValue string `json:"min_acceptable_quote_value"`
}

type balanceInfoResponse struct {
	Address            string  `json:"address"`
	AllocatedBalance   float64 `json:"allocated_balance"`
	Cva                float64 `json:"cva"`
	PartyAMm           float64 `json:"party_a_mm"`
	PartyBMm           float64 `json:"party_b_mm"`
	Lf                 float64 `json:"lf"`
	TotalLocked        float64 `json:"total_locked"`
	PendingCva         float64 `json:"pending_cva"`
	PendingPartyAMm    float64 `json:"pending_party_a_mm"`
	PendingPartyBMm    float64 `json:"pending_party_b_mm"`
	PendingLf          float64 `json:"pending_lf"`
	TotalPendingLocked float64 `json:"total_pending_locked"`
	Upnl               float64 `json:"upnl"`
	Notional           float64 `json:"notional"`
	AvailableBalance   float64 `json:"available_balance"`
	LiquidationStatus  bool    `json:"liquidation_status"`
	Timestamp          int64   `json:"timestamp"`
}

type notionalCapResponse struct {
	Name     string `json:"name"`
	TotalCap string `json:"total_cap"`
	Used     string `json:"used"`
}

type priceRangeResponse struct {
	Name     string `json:"name"`
	MinPrice string `json:"min_price"`
	MaxPrice string `json:"max_price"`
}

// websocket frames; the hedger's price stream is Binance mark-price
// compatible, hence the one-letter field names
type wsCombinedFrame struct {
	Stream string       `json:"stream"`
	Data   wsPriceFrame `json:"data"`
}

type wsPriceFrame struct {
	Symbol          string `json:"s"`
	MarkPrice       string `json:"p"`
	IndexPrice      string `json:"i"`
	FundingRate     string `json:"r"`
	NextFundingTime int64  `json:"T"` // unix ms
}
