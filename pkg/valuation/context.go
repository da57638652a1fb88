package valuation

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
)

// Context carries everything a valuation call may consult: market reference
// data, the latest live prices and the account flags. It is an immutable
// snapshot, so the valuation layer has no hidden global state.
type Context struct {
	Account            common.Address
	LiquidationPending bool // account-level partyA liquidation in progress

	Markets map[int64]*market.Market // by market id
	Prices  map[string]market.Data   // by market name, last-write-wins

	Now time.Time

	Guides GuideConfig
}

// GuideConfig holds the close-guide thresholds. These encode venue business
// rules and are configuration, not invariants.
type GuideConfig struct {
	// DustNotional is the notional below which a position is only worth
	// closing in full.
	DustNotional num.Value
}

// Market resolves a market by id; nil when reference data has not arrived.
func (c *Context) Market(id int64) *market.Market {
	return c.Markets[id]
}

// MarkPrice is the latest mark price for a market name, Indeterminate when
// the feed has not delivered one yet.
func (c *Context) MarkPrice(name string) num.Value {
	d, ok := c.Prices[name]
	if !ok {
		return num.Indeterminate
	}
	return d.MarkPrice
}

// Data returns the live snapshot for a market name.
func (c *Context) Data(name string) (market.Data, bool) {
	d, ok := c.Prices[name]
	return d, ok
}
