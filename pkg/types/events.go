package types

import "time"

// PriceUpdateEvent is one tick of the hedger's mark-price stream. Updates
// carry no sequence numbers; the holder applies them last-write-wins.
type PriceUpdateEvent struct {
	Name         string // market name, e.g. "BTCUSDT"
	MarkPrice    string
	IndexPrice   string
	FundingRate  string
	NextFunding  time.Time
	ReceivedTime time.Time
}
