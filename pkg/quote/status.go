package quote

import "fmt"

// Status is the on-chain quote lifecycle state. The wire encoding is the
// diamond's numeric index (see FromIndex); in process it is a closed enum
// and every observed change must pass the transition table below.
type Status string

const (
	StatusPending            = Status("PENDING")
	StatusLocked             = Status("LOCKED")
	StatusCancelPending      = Status("CANCEL_PENDING")
	StatusCanceled           = Status("CANCELED")
	StatusOpened             = Status("OPENED")
	StatusClosePending       = Status("CLOSE_PENDING")
	StatusCancelClosePending = Status("CANCEL_CLOSE_PENDING")
	StatusClosed             = Status("CLOSED")
	StatusLiquidated         = Status("LIQUIDATED")
	StatusExpired            = Status("EXPIRED")
)

var statusByIndex = []Status{
	StatusPending,            // 0
	StatusLocked,             // 1
	StatusCancelPending,      // 2
	StatusCanceled,           // 3
	StatusOpened,             // 4
	StatusClosePending,       // 5
	StatusCancelClosePending, // 6
	StatusClosed,             // 7
	StatusLiquidated,         // 8
	StatusExpired,            // 9
}

// FromIndex maps the on-chain status code to its enum value.
func FromIndex(i int) (Status, error) {
	if i < 0 || i >= len(statusByIndex) {
		return "", fmt.Errorf("unknown quote status index: %d", i)
	}
	return statusByIndex[i], nil
}

// Index is the inverse of FromIndex.
func (s Status) Index() int {
	for i, st := range statusByIndex {
		if st == s {
			return i
		}
	}
	return -1
}

// transitions is the complete set of valid lifecycle moves. Anything not
// listed here is a protocol violation on the data source's side.
var transitions = map[Status][]Status{
	StatusPending:            {StatusLocked, StatusCancelPending, StatusExpired},
	StatusLocked:             {StatusOpened, StatusCancelPending, StatusExpired},
	StatusCancelPending:      {StatusCanceled},
	StatusOpened:             {StatusClosePending, StatusLiquidated},
	StatusClosePending:       {StatusClosed, StatusCancelClosePending},
	StatusCancelClosePending: {StatusOpened},
	// terminal states move nowhere
	StatusCanceled:   {},
	StatusExpired:    {},
	StatusClosed:     {},
	StatusLiquidated: {},
}

// CanTransition reports whether from -> to is a valid lifecycle move.
// A refreshed record carrying the same status is not a transition.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition is CanTransition with an error for logging.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid quote status transition %v -> %v", from, to)
	}
	return nil
}

// IsTerminal reports whether no further status or numeric mutation is
// permitted on a quote in this state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCanceled, StatusExpired, StatusClosed, StatusLiquidated:
		return true
	}
	return false
}

// IsOpenPending reports the open-side in-flight states, whose fill
// percentage is measured against the full quantity.
func (s Status) IsOpenPending() bool {
	switch s {
	case StatusPending, StatusLocked, StatusCancelPending:
		return true
	}
	return false
}

// IsClosePending reports the close-side in-flight states, whose fill
// percentage is measured against the quantity requested to close.
func (s Status) IsClosePending() bool {
	return s == StatusClosePending || s == StatusCancelClosePending
}

// HasFillDisplay reports whether a fill percentage makes sense for the state.
func (s Status) HasFillDisplay() bool {
	return s.IsOpenPending() || s.IsClosePending()
}

// Title renders the status for display, e.g. "Close Pending".
func (s Status) Title() string {
	out := make([]byte, 0, len(s))
	upper := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if !upper && c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
		upper = false
	}
	return string(out)
}
