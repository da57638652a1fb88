package valuation

import (
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

// Row is one display-ready position/order line: every string is already
// formatted under the panel's rules, the enums and booleans drive styling.
type Row struct {
	Id           int64              `json:"id"`
	Name         string             `json:"name"`
	Symbol       string             `json:"symbol"`
	PositionType types.PositionType `json:"positionType"`
	OrderType    types.OrderType    `json:"orderType"`
	Status       quote.Status       `json:"status"`
	StatusText   string             `json:"statusText"` // status cell: uPnL, fill %, "Expired", ...

	Leverage  string `json:"leverage"`
	Size      string `json:"size"`
	CloseSize string `json:"closeSize,omitempty"` // set while a close is in flight

	NotionalValue string `json:"notionalValue"`
	MarketPrice   string `json:"marketPrice"`
	OpenPrice     string `json:"openPrice"`
	ClosePrice    string `json:"closePrice,omitempty"` // set while a close is in flight

	Upnl        string `json:"upnl"`
	UpnlPercent string `json:"upnlPercent"`

	Expired            bool         `json:"expired"`
	LiquidationPending bool         `json:"liquidationPending"`
	Action             quote.Action `json:"action"`
}

// BuildRow assembles the display row for a quote against the current
// context. It never fails: missing markets or prices degrade the affected
// fields to the indeterminate mark.
func BuildRow(ctx *Context, q *quote.Quote, fillAmount num.Value) Row {
	m := ctx.Market(q.MarketId)
	var name, symbol string
	var pricePrecision int32 = 2
	if m != nil {
		name, symbol = m.Name, m.Symbol
		pricePrecision = m.PricePrecision
	}
	markPrice := ctx.MarkPrice(name)
	avail := AvailableAmount(q, m)
	expired := q.Expired(ctx.Now)

	row := Row{
		Id:                 q.Id,
		Name:               name,
		Symbol:             symbol,
		PositionType:       q.PositionType,
		OrderType:          q.OrderType,
		Status:             q.Status,
		Leverage:           num.FormatAmount(Leverage(q)) + "x",
		NotionalValue:      formatNotional(NotionalValue(avail, markPrice)),
		Expired:            expired,
		LiquidationPending: ctx.LiquidationPending,
		Action:             q.ActionFor(ctx.LiquidationPending, expired),
	}

	// size / market price / open price trio branches on lifecycle side
	switch {
	case q.Status.IsClosePending():
		row.Size = num.FormatAmount(avail)
		row.CloseSize = num.FormatAmount(q.QuantityToClose)
		row.MarketPrice = num.FormatPrice(markPrice, pricePrecision)
		row.OpenPrice = "$" + num.FormatAmount(q.OpenedPrice)
		if q.OrderType == types.OrderLimit {
			row.ClosePrice = "$" + num.FormatAmount(q.RequestedCloseLimitPrice)
		} else {
			row.ClosePrice = "Market"
		}
	case q.Status.IsOpenPending():
		row.Size = num.FormatAmount(q.Quantity)
		row.MarketPrice = num.FormatPrice(markPrice, pricePrecision)
		if q.OrderType == types.OrderLimit {
			row.OpenPrice = "$" + num.FormatAmount(q.RequestedOpenPrice)
		} else {
			row.OpenPrice = "Market Price"
		}
	case q.Status.IsTerminal():
		// settled quotes show the full traded size and the exit price
		row.Size = num.FormatAmount(q.Quantity)
		row.MarketPrice = num.FormatPrice(markPrice, pricePrecision)
		row.OpenPrice = "$" + num.FormatAmount(q.OpenedPrice)
		switch q.Status {
		case quote.StatusClosed:
			row.ClosePrice = "$" + num.FormatAmount(q.AvgClosedPrice)
		case quote.StatusLiquidated:
			row.ClosePrice = "$" + num.FormatAmount(EffectiveClosePrice(q))
		}
	default:
		row.Size = num.FormatAmount(avail)
		row.MarketPrice = num.FormatPrice(markPrice, pricePrecision)
		row.OpenPrice = "$" + num.FormatAmount(q.OpenedPrice)
	}

	// realized PnL on a settled quote is a return on the full traded size,
	// not the (exhausted) remainder
	pnlBase := avail
	if q.Status.IsTerminal() {
		pnlBase = q.Quantity
	}
	upnl, _ := UpnlAndPnl(q, markPrice, m)
	row.Upnl = num.FormatSignedDollar(upnl)
	row.UpnlPercent = num.FormatPercent(PnlPercent(q, upnl, pnlBase).Abs())

	row.StatusText = statusCell(q, ctx, upnl, fillAmount, expired)
	return row
}

// statusCell picks what the status column shows, in priority order:
// account liquidation, a live fill percentage, the uPnL for opened
// positions, expiry notices, then the title-cased status.
func statusCell(q *quote.Quote, ctx *Context, upnl, fillAmount num.Value, expired bool) string {
	if ctx.LiquidationPending {
		return "Liquidation..."
	}
	if fill := FillPercent(q, fillAmount); fill.Known() {
		return fill.String() + "% Filled"
	}
	switch {
	case q.Status == quote.StatusOpened:
		return num.FormatSignedDollar(upnl)
	case expired && q.Status == quote.StatusPending:
		return "Expired"
	case q.CloseExpired(ctx.Now):
		return "Close EXPIRED"
	}
	return q.Status.Title()
}

// a zero notional is as meaningless as a missing one
func formatNotional(v num.Value) string {
	if v.IsZero() {
		return num.IndeterminateMark
	}
	return num.FormatDollar(v)
}
