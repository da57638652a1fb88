package valuation

import (
	"testing"
	"time"

	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

func testContext(markPrice num.Value) *Context {
	m := testMarket()
	return &Context{
		Markets: map[int64]*market.Market{m.Id: m},
		Prices:  map[string]market.Data{m.Name: {MarkPrice: markPrice}},
		Now:     time.Unix(1_000_000, 0),
		Guides:  GuideConfig{DustNotional: num.FromInt(10)},
	}
}

func TestBuildRowOpenedPosition(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	q := baseQuote()
	q.Quantity = num.FromInt(2)
	q.InitialCVA = num.FromInt(40)
	q.InitialLF, q.InitialPartyAMM, q.InitialPartyBMM = num.Zero(), num.Zero(), num.Zero()

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.Name != "BTCUSDT" || row.Symbol != "BTC" {
		t.Errorf("market identity not resolved: %+v", row)
	}
	if row.Leverage != "5x" {
		t.Errorf("Leverage = %q, want 5x", row.Leverage)
	}
	if row.Size != "2" {
		t.Errorf("Size = %q", row.Size)
	}
	if row.MarketPrice != "110.00" {
		t.Errorf("MarketPrice = %q, want price-precision rendering", row.MarketPrice)
	}
	if row.OpenPrice != "$100" {
		t.Errorf("OpenPrice = %q", row.OpenPrice)
	}
	if row.NotionalValue != "$220.00" {
		t.Errorf("NotionalValue = %q", row.NotionalValue)
	}
	if row.Upnl != "+ $20.00" {
		t.Errorf("Upnl = %q", row.Upnl)
	}
	if row.StatusText != "+ $20.00" {
		t.Errorf("opened position shows its uPnL in the status cell, got %q", row.StatusText)
	}
	if row.Action != (quote.Action{Label: "Close"}) {
		t.Errorf("Action = %+v", row.Action)
	}
}

func TestBuildRowPendingLimitOrder(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	q := baseQuote()
	q.Status = quote.StatusPending
	q.OrderType = types.OrderLimit
	q.RequestedOpenPrice = num.FromInt(95)
	q.Deadline = ctx.Now.Unix() + 3600

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.OpenPrice != "$95" {
		t.Errorf("pending limit order shows the requested price, got %q", row.OpenPrice)
	}
	if row.StatusText != "Pending" {
		t.Errorf("StatusText = %q", row.StatusText)
	}
	if row.Action != (quote.Action{Label: "Cancel"}) {
		t.Errorf("Action = %+v", row.Action)
	}

	q.OrderType = types.OrderMarket
	row = BuildRow(ctx, q, num.Indeterminate)
	if row.OpenPrice != "Market Price" {
		t.Errorf("pending market order shows %q", row.OpenPrice)
	}
}

func TestBuildRowPartialFill(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	q := baseQuote()
	q.Status = quote.StatusPending
	q.Deadline = ctx.Now.Unix() + 3600

	row := BuildRow(ctx, q, num.FromInt(4))
	if row.StatusText != "40% Filled" {
		t.Errorf("StatusText = %q, want 40%% Filled", row.StatusText)
	}
}

func TestBuildRowExpiredPending(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	q := baseQuote()
	q.Status = quote.StatusPending
	q.Deadline = ctx.Now.Unix() - 60

	row := BuildRow(ctx, q, num.Indeterminate)
	if !row.Expired {
		t.Error("deadline in the past must flag the row expired")
	}
	if row.StatusText != "Expired" {
		t.Errorf("StatusText = %q", row.StatusText)
	}
	if row.Action != (quote.Action{Label: "Unlock"}) {
		t.Errorf("expired order offers Unlock, got %+v", row.Action)
	}
}

func TestBuildRowClosePending(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	q := baseQuote()
	q.Status = quote.StatusClosePending
	q.QuantityToClose = num.FromInt(4)
	q.RequestedCloseLimitPrice = num.FromInt(115)
	q.Deadline = ctx.Now.Unix() + 3600

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.CloseSize != "4" {
		t.Errorf("CloseSize = %q", row.CloseSize)
	}
	if row.ClosePrice != "$115" {
		t.Errorf("ClosePrice = %q", row.ClosePrice)
	}
	if row.Action != (quote.Action{Label: "Cancel Close"}) {
		t.Errorf("Action = %+v", row.Action)
	}

	// past its deadline the close request must be called out
	q.Deadline = ctx.Now.Unix() - 60
	row = BuildRow(ctx, q, num.Indeterminate)
	if row.StatusText != "Close EXPIRED" {
		t.Errorf("StatusText = %q", row.StatusText)
	}
}

func TestBuildRowLiquidationPending(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	ctx.LiquidationPending = true
	q := baseQuote()

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.StatusText != "Liquidation..." {
		t.Errorf("StatusText = %q", row.StatusText)
	}
	if row.Action != (quote.Action{Label: "Liquidation...", Disabled: true}) {
		t.Errorf("Action = %+v", row.Action)
	}
}

func TestBuildRowQuietFeed(t *testing.T) {
	ctx := testContext(num.Indeterminate)
	q := baseQuote()

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.MarketPrice != num.IndeterminateMark {
		t.Errorf("MarketPrice = %q, want the indeterminate mark", row.MarketPrice)
	}
	if row.NotionalValue != num.IndeterminateMark {
		t.Errorf("NotionalValue = %q, want the indeterminate mark", row.NotionalValue)
	}
	if row.Upnl != num.IndeterminateMark {
		t.Errorf("Upnl = %q, want the indeterminate mark", row.Upnl)
	}
}

func TestBuildRowUnknownMarket(t *testing.T) {
	ctx := testContext(num.FromInt(110))
	q := baseQuote()
	q.MarketId = 99

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.Name != "" {
		t.Errorf("unknown market must not resolve a name, got %q", row.Name)
	}
	if row.MarketPrice != num.IndeterminateMark {
		t.Errorf("MarketPrice = %q", row.MarketPrice)
	}
}

func TestBuildRowClosedQuote(t *testing.T) {
	ctx := testContext(num.FromInt(115))
	q := baseQuote()
	q.Status = quote.StatusClosed
	q.Quantity = num.FromInt(2)
	q.ClosedAmount = num.FromInt(2)
	q.AvgClosedPrice = num.FromInt(110)
	q.InitialCVA = num.FromInt(40)
	q.InitialLF, q.InitialPartyAMM, q.InitialPartyBMM = num.Zero(), num.Zero(), num.Zero()

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.Size != "2" {
		t.Errorf("settled quote shows the full traded size, got %q", row.Size)
	}
	if row.ClosePrice != "$110" {
		t.Errorf("ClosePrice = %q, want the average closed price", row.ClosePrice)
	}
	if row.Upnl != "+ $20.00" {
		t.Errorf("Upnl = %q", row.Upnl)
	}
	if row.UpnlPercent != "50.00%" {
		t.Errorf("UpnlPercent = %q, want return over the traded size", row.UpnlPercent)
	}
	if row.StatusText != "Closed" {
		t.Errorf("StatusText = %q", row.StatusText)
	}
}

func TestBuildRowLiquidatedQuote(t *testing.T) {
	ctx := testContext(num.FromInt(95))
	q := baseQuote()
	q.Status = quote.StatusLiquidated
	q.LiquidatePrice = num.FromInt(97)
	q.LiquidateAmount = num.FromInt(10)

	row := BuildRow(ctx, q, num.Indeterminate)
	if row.Size != "10" {
		t.Errorf("Size = %q", row.Size)
	}
	if row.ClosePrice != "$97" {
		t.Errorf("ClosePrice = %q, want the effective liquidation price", row.ClosePrice)
	}
	if row.Upnl != "- $30.00" {
		t.Errorf("Upnl = %q", row.Upnl)
	}
	if row.UpnlPercent != "30.00%" {
		t.Errorf("UpnlPercent = %q", row.UpnlPercent)
	}
}
