package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"perpdesk/pkg/dibs"
	"perpdesk/pkg/graph"
	"perpdesk/pkg/hedger"
	"perpdesk/pkg/types"
)

func Run(ctx context.Context) error {
	log.Info("🦿 Running...")

	tasks := []func(ctx context.Context) error{
		runMarketRefresh,
		runBalanceRefresh,
		runQuoteRefresh,
		runHistoryRefresh,
		runPriceFeed,
	}
	if Exporter != nil {
		tasks = append(tasks, runLeaderboardExport)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(tasks))
	for _, task := range tasks {
		wg.Add(1)
		go func(task func(ctx context.Context) error) {
			defer wg.Done()
			if err := task(ctx); err != nil {
				errChan <- err
			}
		}(task)
	}
	go func() {
		wg.Wait()
		close(errChan)
	}()

	// collect errors
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during execution: %v", errs)
	}
	return nil
}

// runMarketRefresh keeps the market catalog current. A failed refresh keeps
// the last good catalog and retries on the next tick.
func runMarketRefresh(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(Cfg.Refresh.MarketsIntervalS) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := refreshMarkets(); err != nil {
				log.Warnf("fail to refresh markets: %v", err)
			}
		}
	}
}

func runBalanceRefresh(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(Cfg.Refresh.BalanceIntervalS) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := refreshBalance(); err != nil {
				log.Warnf("fail to refresh balance: %v", err)
				Board.SetBalanceState(types.ApiStateError)
			}
		}
	}
}

// runQuoteRefresh polls the subgraph for the account's live quotes and feeds
// them whole into the panel; ReplaceQuote rejects stale or illegal updates.
func runQuoteRefresh(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(Cfg.Refresh.QuotesIntervalS) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := refreshQuotes(); err != nil {
				log.Warnf("fail to refresh quotes: %v", err)
			}
		}
	}
}

// runHistoryRefresh re-pulls the first history page on the balance cadence so
// freshly settled quotes show up without a manual page request.
func runHistoryRefresh(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(Cfg.Refresh.BalanceIntervalS) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := refreshHistoryPage(0); err != nil {
				log.Warnf("fail to refresh history: %v", err)
			}
		}
	}
}

// runPriceFeed consumes mark prices from the hedger websocket, or polls
// Binance premium-index data when the fallback source is configured.
func runPriceFeed(ctx context.Context) error {
	symbols := Board.MarketNames()
	if len(symbols) == 0 {
		log.Warn("no markets registered, price feed idle")
		<-ctx.Done()
		return nil
	}

	if Cfg.Hedger.BinanceFallback {
		poller := hedger.NewFallbackPoller(symbols, time.Duration(Cfg.Hedger.FallbackIntervalS)*time.Second)
		poller.Run(ctx, Board.ApplyPriceUpdate)
		return nil
	}

	stream := hedger.NewPriceStream(Cfg.Hedger.WsUrl, symbols)
	doneC, stopC, err := stream.ConnectAndSubscribe(Board.ApplyPriceUpdate)
	if err != nil {
		return fmt.Errorf("fail to connect price stream: %w", err)
	}
	select {
	case <-ctx.Done():
		close(stopC)
		<-doneC
		return nil
	case <-doneC:
		return fmt.Errorf("price stream terminated")
	}
}

// runLeaderboardExport uploads yesterday's leaderboard once per day.
func runLeaderboardExport(ctx context.Context) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			day := DibsCfg.DayOf(time.Now()) - 1
			if day < 0 {
				continue
			}
			if err := exportLeaderboard(day); err != nil {
				log.Warnf("fail to export leaderboard for day %v: %v", day, err)
			}
		}
	}
}

func exportLeaderboard(day int64) error {
	rows, err := DibsGraph.DailyVolumes(day, 0)
	if err != nil {
		return err
	}
	entries := dibs.BuildLeaderboard(rows, DibsCfg)
	if Archive != nil {
		if err := Archive.SaveLeaderboard(day, entries); err != nil {
			log.Warnf("fail to archive leaderboard for day %v: %v", day, err)
		}
	}
	if err := Exporter.UploadLeaderboard(day, entries); err != nil {
		return err
	}
	log.Infof("leaderboard for day %v exported: %v entries", day, len(entries))
	return nil
}

func refreshHistoryPage(page int) error {
	res, err := History.Fetch(Board.Account(), page)
	if errors.Is(err, graph.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	Board.SetHistoryPage(res.Page, res.Quotes)
	if Archive != nil && res.Page == 0 {
		if err := Archive.SaveHistoryPage(res.Account, res.Page, res.Quotes); err != nil {
			log.Warnf("fail to archive history page: %v", err)
		}
	}
	return nil
}
