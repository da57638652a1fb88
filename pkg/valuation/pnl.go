package valuation

import (
	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
)

// Leverage is open notional over initial locked margin, the gearing the
// position was opened with. Pre-open quotes are valued at the requested
// open price since nothing has filled yet.
func Leverage(q *quote.Quote) num.Value {
	price := q.OpenedPrice
	if !price.Known() || price.IsZero() {
		price = q.RequestedOpenPrice
	}
	lm := InitialLockedMargin(q)
	return q.Quantity.Mul(price).Div(lm).Round(0)
}

// dir converts the position type into the PnL sign.
func dir(q *quote.Quote) num.Value {
	return num.FromInt(q.PositionType.Dir())
}

// EffectiveClosePrice is the exit price of a liquidated position: the
// liquidation-amount-weighted average of the liquidation price and the
// average price of whatever closed normally before the liquidation.
//
//	(liquidatePrice × liquidateAmount + avgClosedPrice × closedAmount) / quantity
func EffectiveClosePrice(q *quote.Quote) num.Value {
	liq := q.LiquidatePrice.Mul(q.LiquidateAmount)
	if q.LiquidateAmount.IsZero() {
		liq = num.Zero()
	}
	closed := q.AvgClosedPrice.Mul(q.ClosedAmount)
	if q.ClosedAmount.IsZero() {
		closed = num.Zero()
	}
	return liq.Add(closed).Div(q.Quantity)
}

// UpnlAndPnl derives the unrealized and realized PnL of a quote against the
// given mark price. The lifecycle state gates which branch applies:
//
//   - opened (incl. close-pending): uPnL against the mark price over the
//     remaining size, realized PnL against the average closed price over
//     the closed size;
//   - closed: both equal the realized PnL;
//   - liquidated: both against the liquidation-weighted effective price
//     over the full quantity;
//   - anything still opening or dead: zero.
//
// An unavailable mark price makes the open-position uPnL indeterminate.
func UpnlAndPnl(q *quote.Quote, markPrice num.Value, m *market.Market) (upnl, pnl num.Value) {
	d := dir(q)
	switch q.Status {
	case quote.StatusOpened, quote.StatusClosePending, quote.StatusCancelClosePending:
		realized := q.AvgClosedPrice.Sub(q.OpenedPrice).Mul(q.ClosedAmount).Mul(d)
		if q.ClosedAmount.IsZero() {
			realized = num.Zero()
		}
		if !markPrice.Known() || markPrice.IsZero() {
			return num.Indeterminate, realized
		}
		open := markPrice.Sub(q.OpenedPrice).Mul(AvailableAmount(q, m)).Mul(d)
		return open, realized
	case quote.StatusClosed:
		realized := q.AvgClosedPrice.Sub(q.OpenedPrice).Mul(q.ClosedAmount).Mul(d)
		return realized, realized
	case quote.StatusLiquidated:
		effective := EffectiveClosePrice(q)
		realized := effective.Sub(q.OpenedPrice).Mul(q.Quantity).Mul(d)
		return realized, realized
	}
	return num.Zero(), num.Zero()
}

// PnlPercent reports PnL as a return-on-margin percentage:
//
//	pnl / amount / openedPrice × leverage × 100
//
// rounded to two decimals. This is return on the margin backing the
// position, not on its notional. A zero opened price or amount yields an
// indeterminate marker, never NaN.
func PnlPercent(q *quote.Quote, pnl, amount num.Value) num.Value {
	return pnl.Div(amount).Div(q.OpenedPrice).Mul(Leverage(q)).Mul(num.FromInt(100)).Round(2)
}

// FillPercent is how much of an in-flight order the hedger has executed.
// Open-side orders fill against the full quantity, close-side ones against
// the quantity requested to close. Quotes with no fill display, or an
// absent fill amount, report indeterminate.
func FillPercent(q *quote.Quote, fillAmount num.Value) num.Value {
	if !fillAmount.Known() || !q.Status.HasFillDisplay() {
		return num.Indeterminate
	}
	if fillAmount.IsZero() {
		return num.Zero()
	}
	hundred := num.FromInt(100)
	if q.Status.IsClosePending() {
		// a fill below the already-closed amount reads as nothing new filled
		pct := fillAmount.Sub(q.ClosedAmount).Div(q.QuantityToClose).Mul(hundred).Round(0)
		if pct.IsNegative() {
			return num.Zero()
		}
		return pct
	}
	return fillAmount.Div(q.Quantity).Mul(hundred).Round(0)
}

// NextFundingPayment is the funding owed (positive) or accrued (negative)
// at the next funding tick over the position's current notional.
func NextFundingPayment(notional, fundingRate num.Value) num.Value {
	return notional.Mul(fundingRate)
}

// LiquidationDistancePercent is how far the mark price sits from the
// liquidation price, as a percentage of the mark.
func LiquidationDistancePercent(markPrice, liquidatePrice num.Value) num.Value {
	if !markPrice.Known() || markPrice.IsZero() {
		return num.Indeterminate
	}
	return markPrice.Sub(liquidatePrice).Abs().Div(markPrice).Mul(num.FromInt(100)).Round(2)
}
