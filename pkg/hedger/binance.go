package hedger

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	log "github.com/sirupsen/logrus"

	"perpdesk/pkg/types"
)

// FallbackPoller polls Binance futures premium-index data as a stand-in
// price source. Hedger market names are Binance-compatible, so the symbol
// maps straight through. Used when the hedger socket is disabled or quiet.
type FallbackPoller struct {
	client   *futures.Client
	symbols  []string
	interval time.Duration
	logger   *log.Entry
}

func NewFallbackPoller(symbols []string, interval time.Duration) *FallbackPoller {
	return &FallbackPoller{
		client:   futures.NewClient("", ""), // public endpoints only
		symbols:  symbols,
		interval: interval,
		logger:   log.WithFields(log.Fields{"component": "binanceFallback"}),
	}
}

// Run polls until the context is canceled, pushing one event per symbol
// per round. Partial rounds are fine: a symbol that fails keeps its
// previous snapshot.
func (p *FallbackPoller) Run(ctx context.Context, onEvent func(e types.PriceUpdateEvent)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, onEvent)
		}
	}
}

func (p *FallbackPoller) poll(ctx context.Context, onEvent func(e types.PriceUpdateEvent)) {
	for _, symbol := range p.symbols {
		evt, err := p.fetch(ctx, symbol)
		if err != nil {
			p.logger.Debugf("fail to poll %v: %v", symbol, err)
			continue
		}
		onEvent(evt)
	}
}

func (p *FallbackPoller) fetch(ctx context.Context, symbol string) (types.PriceUpdateEvent, error) {
	res, err := p.client.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.PriceUpdateEvent{}, err
	}
	if len(res) == 0 {
		return types.PriceUpdateEvent{}, fmt.Errorf("no premium index data for %v", symbol)
	}
	idx := res[0]
	return types.PriceUpdateEvent{
		Name:         idx.Symbol,
		MarkPrice:    idx.MarkPrice,
		IndexPrice:   idx.IndexPrice,
		FundingRate:  idx.LastFundingRate,
		NextFunding:  time.UnixMilli(idx.NextFundingTime),
		ReceivedTime: time.Now(),
	}, nil
}
