package valuation

import (
	"perpdesk/pkg/market"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

// NotionalValue is size × price. An unavailable price (zero or
// indeterminate) makes the result indeterminate rather than zero, so a
// position is never displayed as worthless just because the feed is quiet.
func NotionalValue(quantity, price num.Value) num.Value {
	if !price.Known() || price.IsZero() {
		return num.Indeterminate
	}
	return quantity.Mul(price)
}

// LockedMargin is the margin backing an opened position:
// CVA + LF + partyAMM + partyBMM. A negative sum means malformed upstream
// data and degrades to indeterminate.
func LockedMargin(q *quote.Quote) num.Value {
	lm := q.CVA.Add(q.LF).Add(q.PartyAMM).Add(q.PartyBMM)
	if lm.IsNegative() {
		return num.Indeterminate
	}
	return lm
}

// InitialLockedMargin is the same sum over the components captured at open
// time, used while the quote is still on the open side of its lifecycle.
func InitialLockedMargin(q *quote.Quote) num.Value {
	lm := q.InitialCVA.Add(q.InitialLF).Add(q.InitialPartyAMM).Add(q.InitialPartyBMM)
	if lm.IsNegative() {
		return num.Indeterminate
	}
	return lm
}

// LockedMarginFor picks the initial components pre-open and the current
// ones after.
func LockedMarginFor(q *quote.Quote) num.Value {
	if q.Status.IsOpenPending() {
		return InitialLockedMargin(q)
	}
	return LockedMargin(q)
}

// AvailableAmount is the size still on the table: the full quantity while
// the order is opening, quantity − closedAmount afterwards, floored at the
// market's quantity precision.
func AvailableAmount(q *quote.Quote, m *market.Market) num.Value {
	if q.Status.IsOpenPending() {
		return q.Quantity
	}
	avail := q.Quantity.Sub(q.ClosedAmount)
	if m != nil {
		avail = avail.RoundDown(m.QuantityPrecision)
	}
	return avail
}

// AvailableToClose is how much of the position may be partially closed
// without dropping the remainder below the venue's minimum acceptable
// value:
//
//	(lockedMargin − minAcceptableQuoteValue) / lockedMargin × availableAmount
//
// rounded down to the quantity precision. When the locked margin is at or
// below the minimum the position must be closed in full and the partial
// allowance is zero.
func AvailableToClose(q *quote.Quote, m *market.Market) num.Value {
	if m == nil || !m.MinAcceptableQuoteValue.Known() {
		return num.Indeterminate
	}
	lm := LockedMarginFor(q)
	if !lm.Known() {
		return num.Indeterminate
	}
	if lm.LessThanOrEqual(m.MinAcceptableQuoteValue) {
		return num.Zero()
	}
	avail := AvailableAmount(q, m)
	out := lm.Sub(m.MinAcceptableQuoteValue).Div(lm).Mul(avail).RoundDown(m.QuantityPrecision)
	// keep the bound 0 <= out <= avail despite rounding
	return num.Max(num.Zero(), num.Min(out, avail))
}

// Guide is the close-flow suggestion derived for a position.
type Guide struct {
	Tier            types.CloseGuide
	MaxClose        num.Value // full close allowance
	MaxPartialClose num.Value // partial close allowance, zero when disallowed
	MinRemaining    num.Value // size that must remain after a partial close
}

// CloseGuideFor classifies the close flow for a position: dust positions
// close in full only, positions whose margin sits at the minimum close in
// full, everything else may close partially up to AvailableToClose.
func CloseGuideFor(q *quote.Quote, m *market.Market, markPrice num.Value, cfg GuideConfig) Guide {
	avail := AvailableAmount(q, m)
	toClose := AvailableToClose(q, m)
	notional := NotionalValue(avail, markPrice)

	if notional.Known() && cfg.DustNotional.Known() && notional.LessThanOrEqual(cfg.DustNotional) {
		return Guide{
			Tier:            types.GuideDustClose,
			MaxClose:        avail,
			MaxPartialClose: num.Zero(),
			MinRemaining:    num.Zero(),
		}
	}
	if toClose.IsZero() {
		return Guide{
			Tier:            types.GuideFullCloseOnly,
			MaxClose:        avail,
			MaxPartialClose: num.Zero(),
			MinRemaining:    avail,
		}
	}
	return Guide{
		Tier:            types.GuideFullOrPartialClose,
		MaxClose:        avail,
		MaxPartialClose: toClose,
		MinRemaining:    avail.Sub(toClose),
	}
}
