package hedger

import (
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"perpdesk/pkg/http"
	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
)

// Client talks to the hedger's REST API: market reference data, per-account
// balance summaries and the venue's cap/range/error metadata.
type Client struct {
	apiUrl string
	logger *log.Entry

	errMu   sync.Mutex
	errMsgs map[int]string
}

func NewClient(apiUrl string) *Client {
	return &Client{
		apiUrl: strings.TrimRight(apiUrl, "/"),
		logger: log.WithFields(log.Fields{"component": "hedger", "url": apiUrl}),
	}
}

// GetMarkets fetches the tradable symbols. A symbol with unparsable
// reference numbers is skipped with a log line rather than poisoning the
// whole list.
func (c *Client) GetMarkets() ([]*market.Market, error) {
	var res symbolsResponse
	if err := http.GetJSON(fmt.Sprintf("%s/contract-symbols", c.apiUrl), &res); err != nil {
		return nil, fmt.Errorf("fail to fetch contract symbols: %w", err)
	}

	markets := make([]*market.Market, 0, len(res.Symbols))
	for _, s := range res.Symbols {
		fee := num.FromString(s.TradingFee)
		minQuote := num.FromString(s.MinAcceptableQuoteValue)
		if !fee.Known() || !minQuote.Known() {
			c.logger.Warnf("skipping market %v: malformed reference data", s.Name)
			continue
		}
		m := market.New(s.SymbolId, s.Name, s.Symbol, s.Asset)
		m.PricePrecision = s.PricePrecision
		m.QuantityPrecision = s.QuantityPrecision
		m.TradingFee = fee
		m.MaxLeverage = s.MaxLeverage
		m.MinAcceptableQuoteValue = minQuote
		markets = append(markets, m)
	}
	return markets, nil
}

// BalanceInfo is the hedger's view of one account's collateral.
type BalanceInfo struct {
	Address            string
	AllocatedBalance   num.Value
	Cva                num.Value
	PartyAMm           num.Value
	PartyBMm           num.Value
	Lf                 num.Value
	TotalLocked        num.Value
	TotalPendingLocked num.Value
	Upnl               num.Value
	Notional           num.Value
	AvailableBalance   num.Value
	LiquidationStatus  bool
	Timestamp          int64
}

func (c *Client) GetBalanceInfo(address string) (*BalanceInfo, error) {
	var res balanceInfoResponse
	url := fmt.Sprintf("%s/balance_info/%s", c.apiUrl, strings.ToLower(address))
	if err := http.GetJSON(url, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch balance info: %w", err)
	}
	return &BalanceInfo{
		Address:            res.Address,
		AllocatedBalance:   num.FromFloat(res.AllocatedBalance),
		Cva:                num.FromFloat(res.Cva),
		PartyAMm:           num.FromFloat(res.PartyAMm),
		PartyBMm:           num.FromFloat(res.PartyBMm),
		Lf:                 num.FromFloat(res.Lf),
		TotalLocked:        num.FromFloat(res.TotalLocked),
		TotalPendingLocked: num.FromFloat(res.TotalPendingLocked),
		Upnl:               num.FromFloat(res.Upnl),
		Notional:           num.FromFloat(res.Notional),
		AvailableBalance:   num.FromFloat(res.AvailableBalance),
		LiquidationStatus:  res.LiquidationStatus,
		Timestamp:          res.Timestamp,
	}, nil
}

// NotionalCap is how much of the market's open-interest cap is used.
type NotionalCap struct {
	Name     string
	TotalCap num.Value
	Used     num.Value
}

func (c *Client) GetNotionalCap(marketName string) (*NotionalCap, error) {
	var res notionalCapResponse
	url := fmt.Sprintf("%s/notional_cap/%s", c.apiUrl, marketName)
	if err := http.GetJSON(url, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch notional cap: %w", err)
	}
	return &NotionalCap{
		Name:     res.Name,
		TotalCap: num.FromString(res.TotalCap),
		Used:     num.FromString(res.Used),
	}, nil
}

// PriceRange is the band the hedger will accept close prices within.
type PriceRange struct {
	Name     string
	MinPrice num.Value
	MaxPrice num.Value
}

func (c *Client) GetPriceRange(marketName string) (*PriceRange, error) {
	var res priceRangeResponse
	url := fmt.Sprintf("%s/price-range/%s", c.apiUrl, marketName)
	if err := http.GetJSON(url, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch price range: %w", err)
	}
	return &PriceRange{
		Name:     res.Name,
		MinPrice: num.FromString(res.MinPrice),
		MaxPrice: num.FromString(res.MaxPrice),
	}, nil
}

// GetErrorMessages fetches the hedger's error-code translation table.
func (c *Client) GetErrorMessages() (map[int]string, error) {
	var res map[int]string
	if err := http.GetJSON(fmt.Sprintf("%s/error_codes", c.apiUrl), &res); err != nil {
		return nil, fmt.Errorf("fail to fetch error codes: %w", err)
	}
	return res, nil
}

// ErrorMessage translates a hedger error code into its human-readable
// message. The table is fetched once and cached for the client's lifetime.
func (c *Client) ErrorMessage(code int) (string, error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.errMsgs == nil {
		msgs, err := c.GetErrorMessages()
		if err != nil {
			return "", err
		}
		c.errMsgs = msgs
	}
	msg, found := c.errMsgs[code]
	if !found {
		return fmt.Sprintf("unknown error code %d", code), nil
	}
	return msg, nil
}
