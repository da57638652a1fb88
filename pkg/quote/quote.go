package quote

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"perpdesk/pkg/num"
	"perpdesk/pkg/types"
)

// Quote is one order/position record through its full lifecycle. Records
// are replaced whole on every refresh; nothing mutates one in place.
type Quote struct {
	Id       int64
	MarketId int64

	PartyA common.Address
	PartyB common.Address

	PositionType types.PositionType
	OrderType    types.OrderType
	Status       Status

	// sizes
	Quantity        num.Value // total requested size
	ClosedAmount    num.Value // cumulative size closed so far
	QuantityToClose num.Value // size requested in the current close
	LiquidateAmount num.Value // size force-closed at liquidation

	// prices, asset-denominated
	OpenedPrice              num.Value
	RequestedOpenPrice       num.Value
	AvgClosedPrice           num.Value
	RequestedCloseLimitPrice num.Value
	LiquidatePrice           num.Value
	MarketPrice              num.Value // mark price captured at the last status change

	// locked margin components, current and as captured at open
	CVA      num.Value
	LF       num.Value
	PartyAMM num.Value
	PartyBMM num.Value

	InitialCVA      num.Value
	InitialLF       num.Value
	InitialPartyAMM num.Value
	InitialPartyBMM num.Value

	CreateTimestamp       int64 // unix seconds
	StatusModifyTimestamp int64
	Deadline              int64
}

// Validate enforces the record-level size invariants. A quote that fails
// here is malformed upstream data; callers log it and keep the previous
// record rather than displaying garbage.
func (q *Quote) Validate() error {
	if q.Quantity.IsNegative() || q.ClosedAmount.IsNegative() || q.QuantityToClose.IsNegative() {
		return fmt.Errorf("quote %d: negative size", q.Id)
	}
	if q.ClosedAmount.GreaterThan(q.Quantity) {
		return fmt.Errorf("quote %d: closedAmount %v exceeds quantity %v", q.Id, q.ClosedAmount, q.Quantity)
	}
	remaining := q.Quantity.Sub(q.ClosedAmount)
	if q.QuantityToClose.GreaterThan(remaining) {
		return fmt.Errorf("quote %d: quantityToClose %v exceeds remaining %v", q.Id, q.QuantityToClose, remaining)
	}
	return nil
}

// Expired reports the derived expiry flag: an open-side order past its
// deadline that the hedger never acted on. Not a stored status.
func (q *Quote) Expired(now time.Time) bool {
	if q.Status != StatusPending && q.Status != StatusLocked {
		return false
	}
	return now.Unix() > q.Deadline
}

// CloseExpired reports a close request past its deadline; the position
// stays open and the close must be canceled ("Close EXPIRED" in the panel).
func (q *Quote) CloseExpired(now time.Time) bool {
	return q.Status == StatusClosePending && now.Unix() > q.Deadline
}

// Action is what the position row's button should offer for this quote.
type Action struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// ActionFor computes the permitted user action. An account under
// liquidation overrides everything; an expired open-side order is offered
// "Unlock" (release the pending funds) instead of a plain cancel.
func (q *Quote) ActionFor(liquidationPending, expired bool) Action {
	if liquidationPending {
		return Action{Label: "Liquidation...", Disabled: true}
	}
	switch q.Status {
	case StatusClosePending:
		return Action{Label: "Cancel Close"}
	case StatusPending, StatusLocked:
		if expired {
			return Action{Label: "Unlock"}
		}
		return Action{Label: "Cancel"}
	case StatusCancelPending:
		return Action{Label: "Cancel", Disabled: true}
	case StatusCancelClosePending, StatusClosed:
		return Action{Label: "Close", Disabled: true}
	}
	return Action{Label: "Close"}
}
