package quote

import (
	"testing"
)

func TestFromIndexRoundTrip(t *testing.T) {
	for i := 0; i < 10; i++ {
		s, err := FromIndex(i)
		if err != nil {
			t.Fatalf("FromIndex(%d): %v", i, err)
		}
		if s.Index() != i {
			t.Errorf("Index(%v) = %d, want %d", s, s.Index(), i)
		}
	}
	if _, err := FromIndex(10); err == nil {
		t.Error("expected error for index 10")
	}
	if _, err := FromIndex(-1); err == nil {
		t.Error("expected error for index -1")
	}
}

func TestTransitionTable(t *testing.T) {
	valid := []struct{ from, to Status }{
		{StatusPending, StatusLocked},
		{StatusPending, StatusCancelPending},
		{StatusPending, StatusExpired},
		{StatusLocked, StatusOpened},
		{StatusLocked, StatusCancelPending},
		{StatusLocked, StatusExpired},
		{StatusCancelPending, StatusCanceled},
		{StatusOpened, StatusClosePending},
		{StatusOpened, StatusLiquidated},
		{StatusClosePending, StatusClosed},
		{StatusClosePending, StatusCancelClosePending},
		{StatusCancelClosePending, StatusOpened},
	}
	for _, tt := range valid {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("%v -> %v should be valid", tt.from, tt.to)
		}
	}

	invalid := []struct{ from, to Status }{
		{StatusPending, StatusOpened},
		{StatusPending, StatusClosed},
		{StatusLocked, StatusLiquidated},
		{StatusOpened, StatusCanceled},
		{StatusOpened, StatusExpired},
		{StatusClosePending, StatusLiquidated},
		{StatusCancelClosePending, StatusClosed},
		{StatusClosed, StatusOpened},
		{StatusCanceled, StatusPending},
		{StatusLiquidated, StatusOpened},
		{StatusExpired, StatusLocked},
	}
	for _, tt := range invalid {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("%v -> %v should be invalid", tt.from, tt.to)
		}
		if err := ValidateTransition(tt.from, tt.to); err == nil {
			t.Errorf("ValidateTransition(%v, %v) should error", tt.from, tt.to)
		}
	}
}

func TestSameStatusIsNotATransition(t *testing.T) {
	for _, s := range statusByIndex {
		if !CanTransition(s, s) {
			t.Errorf("refresh with unchanged status %v must be accepted", s)
		}
	}
}

func TestTerminalStatesMoveNowhere(t *testing.T) {
	terminals := []Status{StatusCanceled, StatusExpired, StatusClosed, StatusLiquidated}
	for _, from := range terminals {
		if !from.IsTerminal() {
			t.Errorf("%v should be terminal", from)
		}
		for _, to := range statusByIndex {
			if to != from && CanTransition(from, to) {
				t.Errorf("terminal %v must not transition to %v", from, to)
			}
		}
	}
	for _, s := range []Status{StatusPending, StatusLocked, StatusCancelPending, StatusOpened, StatusClosePending, StatusCancelClosePending} {
		if s.IsTerminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
}

func TestLifecycleSides(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusLocked, StatusCancelPending} {
		if !s.IsOpenPending() {
			t.Errorf("%v should be open-pending", s)
		}
	}
	for _, s := range []Status{StatusClosePending, StatusCancelClosePending} {
		if !s.IsClosePending() {
			t.Errorf("%v should be close-pending", s)
		}
		if !s.HasFillDisplay() {
			t.Errorf("%v should carry a fill display", s)
		}
	}
	if StatusOpened.HasFillDisplay() || StatusClosed.HasFillDisplay() {
		t.Error("settled states carry no fill display")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   Status
		want string
	}{
		{StatusPending, "Pending"},
		{StatusClosePending, "Close Pending"},
		{StatusCancelClosePending, "Cancel Close Pending"},
		{StatusLiquidated, "Liquidated"},
	}
	for _, tt := range tests {
		if got := tt.in.Title(); got != tt.want {
			t.Errorf("Title(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
