package types

type PositionType string

const (
	PositionLong  = PositionType("LONG")
	PositionShort = PositionType("SHORT")
)

// Dir is the PnL sign of the position: +1 for LONG, -1 for SHORT.
func (p PositionType) Dir() int64 {
	if p == PositionShort {
		return -1
	}
	return 1
}

type OrderType string

const (
	OrderMarket = OrderType("MARKET")
	OrderLimit  = OrderType("LIMIT")
)

// CloseGuide is the suggestion tier shown in the close flow: which
// combinations of full and partial close keep the remaining position above
// the venue's minimum acceptable value.
type CloseGuide int

const (
	GuideFullOrPartialClose CloseGuide = iota + 1 // both full and partial close allowed
	GuideFullCloseOnly                            // partial close would leave position below minimum
	GuideDustClose                                // notional below dust threshold, close in full
)
