package state

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"perpdesk/pkg/hedger"
	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
	"perpdesk/pkg/valuation"
)

// Panel holds everything the trading panel displays: market reference
// data, live prices, the account's quotes and balance. Asynchronous
// sources (market refresh, price stream, history fetches) write to it
// independently with no ordering guarantee; every write is last-write-wins
// and valuation reads a point-in-time snapshot. Staleness across sources
// is tolerated, not prevented.
type Panel struct {
	mu sync.RWMutex

	account common.Address
	guides  valuation.GuideConfig

	markets       map[int64]*market.Market
	marketsByName map[string]*market.Market
	marketsState  types.ApiState

	prices      map[string]market.Data
	pricesState types.ApiState

	positions    map[int64]*quote.Quote // OPENED and close-side quotes
	pendings     map[int64]*quote.Quote // open-side quotes
	fills        map[int64]num.Value    // partial fill amounts, by quote id
	history      map[int][]*quote.Quote // terminal quotes, by page
	historyState types.ApiState

	balance      *hedger.BalanceInfo
	liquidation  bool
	balanceState types.ApiState
}

func NewPanel(account common.Address, guides valuation.GuideConfig) *Panel {
	return &Panel{
		account:       account,
		guides:        guides,
		markets:       make(map[int64]*market.Market),
		marketsByName: make(map[string]*market.Market),
		marketsState:  types.ApiStateLoading,
		prices:        make(map[string]market.Data),
		pricesState:   types.ApiStateLoading,
		positions:     make(map[int64]*quote.Quote),
		pendings:      make(map[int64]*quote.Quote),
		fills:         make(map[int64]num.Value),
		history:       make(map[int][]*quote.Quote),
		historyState:  types.ApiStateLoading,
		balanceState:  types.ApiStateLoading,
	}
}

func (p *Panel) Account() common.Address {
	return p.account
}

// SetMarkets replaces the whole reference set; markets are immutable
// within a session so there is no merge.
func (p *Panel) SetMarkets(markets []*market.Market) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markets = make(map[int64]*market.Market, len(markets))
	p.marketsByName = make(map[string]*market.Market, len(markets))
	for _, m := range markets {
		p.markets[m.Id] = m
		p.marketsByName[m.Name] = m
	}
	p.marketsState = types.ApiStateOK
}

func (p *Panel) SetMarketsState(s types.ApiState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marketsState = s
}

// MarketNames lists the known market names, for stream subscription.
func (p *Panel) MarketNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.marketsByName))
	for name := range p.marketsByName {
		names = append(names, name)
	}
	return names
}

// ApplyPriceUpdate folds one stream tick into the live price map. A tick
// with a malformed mark price is dropped whole; malformed secondary fields
// degrade to indeterminate without losing the tick.
func (p *Panel) ApplyPriceUpdate(e types.PriceUpdateEvent) {
	mark := num.FromString(e.MarkPrice)
	if !mark.Known() {
		log.Warnf("dropping price update for %v: malformed mark price %q", e.Name, e.MarkPrice)
		return
	}
	data := market.Data{
		MarkPrice:       mark,
		IndexPrice:      num.FromString(e.IndexPrice),
		FundingRate:     num.FromString(e.FundingRate),
		NextFundingTime: e.NextFunding,
	}
	p.mu.Lock()
	p.prices[e.Name] = data
	p.pricesState = types.ApiStateOK
	p.mu.Unlock()
}

// ReplaceQuote installs a fresh record for a quote id. The record replaces
// the held one whole; a transition outside the lifecycle table, or any
// mutation of a terminal quote, rejects the record and keeps the old one.
func (p *Panel) ReplaceQuote(q *quote.Quote) {
	if err := q.Validate(); err != nil {
		log.Warnf("rejecting quote update: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.positions[q.Id]
	if prev == nil {
		prev = p.pendings[q.Id]
	}
	if prev != nil {
		if prev.Status.IsTerminal() {
			log.Warnf("rejecting update to terminal quote %d", q.Id)
			return
		}
		if err := quote.ValidateTransition(prev.Status, q.Status); err != nil {
			log.Warnf("rejecting quote update: %v", err)
			return
		}
	}

	delete(p.positions, q.Id)
	delete(p.pendings, q.Id)
	switch {
	case q.Status.IsOpenPending():
		p.pendings[q.Id] = q
	case q.Status.IsTerminal():
		// terminal quotes leave the live sets; history pages own them
		delete(p.fills, q.Id)
	default:
		p.positions[q.Id] = q
	}
}

// SetFillAmount records a partial fill reported for an in-flight quote.
func (p *Panel) SetFillAmount(quoteId int64, fill num.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fills[quoteId] = fill
}

// SetHistoryPage installs the authoritative result for a history page.
func (p *Panel) SetHistoryPage(page int, quotes []*quote.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history[page] = quotes
	p.historyState = types.ApiStateOK
}

func (p *Panel) SetHistoryState(s types.ApiState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.historyState = s
}

// SetBalance folds in the hedger's account summary, including the
// account-level liquidation flag that overrides every position action.
func (p *Panel) SetBalance(b *hedger.BalanceInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance = b
	p.liquidation = b != nil && b.LiquidationStatus
	p.balanceState = types.ApiStateOK
}

func (p *Panel) SetBalanceState(s types.ApiState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balanceState = s
}

func (p *Panel) Balance() (*hedger.BalanceInfo, types.ApiState) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance, p.balanceState
}

// States reports the coarse per-dataset fetch states.
func (p *Panel) States() (markets, prices, history, balance types.ApiState) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.marketsState, p.pricesState, p.historyState, p.balanceState
}

// Snapshot builds the immutable valuation context from whatever is held
// right now. Maps are copied; the valuation layer never sees a live map.
func (p *Panel) Snapshot(now time.Time) *valuation.Context {
	p.mu.RLock()
	defer p.mu.RUnlock()

	markets := make(map[int64]*market.Market, len(p.markets))
	for id, m := range p.markets {
		markets[id] = m
	}
	prices := make(map[string]market.Data, len(p.prices))
	for name, d := range p.prices {
		prices[name] = d
	}
	return &valuation.Context{
		Account:            p.account,
		LiquidationPending: p.liquidation,
		Markets:            markets,
		Prices:             prices,
		Now:                now,
		Guides:             p.guides,
	}
}

// Positions returns the live position quotes with their fill amounts.
func (p *Panel) Positions() ([]*quote.Quote, map[int64]num.Value) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return quoteList(p.positions), copyFills(p.fills)
}

// Pendings returns the open-side in-flight quotes with their fill amounts.
func (p *Panel) Pendings() ([]*quote.Quote, map[int64]num.Value) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return quoteList(p.pendings), copyFills(p.fills)
}

// HistoryPage returns the held page, or nil when not fetched yet.
func (p *Panel) HistoryPage(page int) []*quote.Quote {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.history[page]
}

func quoteList(m map[int64]*quote.Quote) []*quote.Quote {
	out := make([]*quote.Quote, 0, len(m))
	for _, q := range m {
		out = append(out, q)
	}
	return out
}

func copyFills(m map[int64]num.Value) map[int64]num.Value {
	out := make(map[int64]num.Value, len(m))
	for id, v := range m {
		out[id] = v
	}
	return out
}
