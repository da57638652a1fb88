package valuation

import (
	"testing"

	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

func testMarket() *market.Market {
	m := market.New(1, "BTCUSDT", "BTC", "USDT")
	m.PricePrecision = 2
	m.QuantityPrecision = 3
	m.TradingFee = num.FromString("0.001")
	m.MaxLeverage = 40
	m.MinAcceptableQuoteValue = num.FromInt(50)
	return m
}

// baseQuote returns an opened quote with every numeric field determinate;
// tests override the fields they exercise.
func baseQuote() *quote.Quote {
	return &quote.Quote{
		Id:           1,
		MarketId:     1,
		PositionType: types.PositionLong,
		OrderType:    types.OrderLimit,
		Status:       quote.StatusOpened,

		Quantity:        num.FromInt(10),
		ClosedAmount:    num.Zero(),
		QuantityToClose: num.Zero(),
		LiquidateAmount: num.Zero(),

		OpenedPrice:              num.FromInt(100),
		RequestedOpenPrice:       num.FromInt(100),
		AvgClosedPrice:           num.Zero(),
		RequestedCloseLimitPrice: num.Zero(),
		LiquidatePrice:           num.Zero(),
		MarketPrice:              num.FromInt(100),

		CVA:      num.FromInt(40),
		LF:       num.FromInt(10),
		PartyAMM: num.FromInt(30),
		PartyBMM: num.FromInt(20),

		InitialCVA:      num.FromInt(40),
		InitialLF:       num.FromInt(10),
		InitialPartyAMM: num.FromInt(30),
		InitialPartyBMM: num.FromInt(20),
	}
}

func TestNotionalValue(t *testing.T) {
	if got := NotionalValue(num.FromInt(2), num.FromInt(110)); !got.Equal(num.FromInt(220)) {
		t.Errorf("got %v", got)
	}
	if NotionalValue(num.FromInt(2), num.Zero()).Known() {
		t.Error("zero price must give indeterminate notional, not zero")
	}
	if NotionalValue(num.FromInt(2), num.Indeterminate).Known() {
		t.Error("missing price must give indeterminate notional")
	}
}

func TestLockedMargin(t *testing.T) {
	q := baseQuote()
	q.InitialCVA = num.FromInt(8)
	q.InitialLF = num.FromInt(4)
	q.InitialPartyAMM = num.FromInt(16)
	q.InitialPartyBMM = num.FromInt(12)

	if got := LockedMargin(q); !got.Equal(num.FromInt(100)) {
		t.Errorf("LockedMargin = %v, want 100", got)
	}
	if got := InitialLockedMargin(q); !got.Equal(num.FromInt(40)) {
		t.Errorf("InitialLockedMargin = %v, want 40", got)
	}

	q.Status = quote.StatusPending
	if got := LockedMarginFor(q); !got.Equal(num.FromInt(40)) {
		t.Errorf("open-pending quote must use the initial components, got %v", got)
	}
	q.Status = quote.StatusOpened
	if got := LockedMarginFor(q); !got.Equal(num.FromInt(100)) {
		t.Errorf("opened quote must use the current components, got %v", got)
	}

	bad := baseQuote()
	bad.CVA = num.FromInt(-1000)
	if LockedMargin(bad).Known() {
		t.Error("negative margin sum must degrade to indeterminate")
	}
}

func TestAvailableAmount(t *testing.T) {
	m := testMarket()
	q := baseQuote()
	q.Status = quote.StatusPending
	q.ClosedAmount = num.FromInt(4)
	if got := AvailableAmount(q, m); !got.Equal(num.FromInt(10)) {
		t.Errorf("open-pending quote keeps the full quantity, got %v", got)
	}

	q.Status = quote.StatusOpened
	if got := AvailableAmount(q, m); !got.Equal(num.FromInt(6)) {
		t.Errorf("opened quote nets out closed size, got %v", got)
	}

	q.Quantity = num.FromString("10.00049")
	q.ClosedAmount = num.Zero()
	if got := AvailableAmount(q, m); got.String() != "10" {
		t.Errorf("available amount floors at quantity precision, got %v", got)
	}
}

func TestAvailableToClose(t *testing.T) {
	m := testMarket()

	// locked margin 100, minimum 50: (100-50)/100 * 10 = 5
	q := baseQuote()
	if got := AvailableToClose(q, m); !got.Equal(num.FromInt(5)) {
		t.Errorf("AvailableToClose = %v, want 5", got)
	}

	// margin exactly at the minimum: full close only
	q.CVA, q.LF, q.PartyAMM, q.PartyBMM = num.FromInt(50), num.Zero(), num.Zero(), num.Zero()
	if got := AvailableToClose(q, m); !got.IsZero() {
		t.Errorf("margin at the minimum must give zero allowance, got %v", got)
	}

	// bound holds whatever the inputs
	q.CVA = num.FromInt(1_000_000)
	got := AvailableToClose(q, m)
	avail := AvailableAmount(q, m)
	if got.IsNegative() || got.GreaterThan(avail) {
		t.Errorf("allowance %v outside [0, %v]", got, avail)
	}

	if AvailableToClose(q, nil).Known() {
		t.Error("missing market must give indeterminate allowance")
	}
}

func TestCloseGuideFor(t *testing.T) {
	m := testMarket()
	cfg := GuideConfig{DustNotional: num.FromInt(10)}

	// healthy notional, healthy margin: partial close allowed
	q := baseQuote()
	g := CloseGuideFor(q, m, num.FromInt(100), cfg)
	if g.Tier != types.GuideFullOrPartialClose {
		t.Errorf("tier = %v, want full-or-partial", g.Tier)
	}
	if !g.MaxPartialClose.Equal(num.FromInt(5)) {
		t.Errorf("MaxPartialClose = %v, want 5", g.MaxPartialClose)
	}
	if !g.MinRemaining.Equal(num.FromInt(5)) {
		t.Errorf("MinRemaining = %v, want 5", g.MinRemaining)
	}

	// dust notional: full close only, no remainder requirement
	tiny := baseQuote()
	tiny.Quantity = num.FromString("0.05")
	g = CloseGuideFor(tiny, m, num.FromInt(100), cfg)
	if g.Tier != types.GuideDustClose {
		t.Errorf("tier = %v, want dust", g.Tier)
	}
	if !g.MaxPartialClose.IsZero() {
		t.Errorf("dust position allows no partial close, got %v", g.MaxPartialClose)
	}

	// margin at the minimum: full close only
	pinned := baseQuote()
	pinned.CVA, pinned.LF, pinned.PartyAMM, pinned.PartyBMM = num.FromInt(50), num.Zero(), num.Zero(), num.Zero()
	g = CloseGuideFor(pinned, m, num.FromInt(100), cfg)
	if g.Tier != types.GuideFullCloseOnly {
		t.Errorf("tier = %v, want full-close-only", g.Tier)
	}
	if !g.MinRemaining.Equal(num.FromInt(10)) {
		t.Errorf("MinRemaining = %v, want the full size", g.MinRemaining)
	}
}
