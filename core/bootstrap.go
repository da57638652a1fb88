package core

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"perpdesk/config"
	"perpdesk/pkg/archive"
	"perpdesk/pkg/dibs"
	"perpdesk/pkg/graph"
	"perpdesk/pkg/hedger"
	"perpdesk/pkg/num"
	"perpdesk/pkg/state"
	"perpdesk/pkg/types"
	"perpdesk/pkg/utils"
	"perpdesk/pkg/valuation"
)

func Bootstrap(ctx context.Context, cfg config.Config) error {
	log.Info("🦾 Bootstrapping...")
	Cfg = &cfg

	// account
	if cfg.Account == nil || !common.IsHexAddress(cfg.Account.Address) {
		return fmt.Errorf("invalid account address in config")
	}
	account := common.HexToAddress(cfg.Account.Address)

	// panel state with the configurable close-guide thresholds
	guides := valuation.GuideConfig{DustNotional: num.FromString(cfg.Guides.DustNotional)}
	Board = state.NewPanel(account, guides)
	log.Infof("panel registered for account '%v'", account.Hex())

	// clients
	Hedger = hedger.NewClient(cfg.Hedger.ApiUrl)
	QuotesGraph = graph.NewClient(cfg.Subgraph.QuotesUrl)
	DibsGraph = graph.NewClient(cfg.Subgraph.DibsUrl)
	History = graph.NewHistoryFetcher(QuotesGraph, cfg.Refresh.HistoryPageSize)
	DibsCfg = dibs.Config{
		Epoch:       cfg.Dibs.Epoch,
		DailyReward: num.FromString(cfg.Dibs.DailyReward),
	}

	// archive: local snapshots, optional S3 export
	if cfg.Archive != nil && cfg.Archive.Dir != "" {
		store, err := archive.NewStore(cfg.Archive.Dir)
		if err != nil {
			return fmt.Errorf("fail to open archive: %w", err)
		}
		Archive = store
		if s3cfg := cfg.Archive.S3; s3cfg != nil && s3cfg.Enabled {
			exporter, err := archive.NewS3Exporter(
				utils.LoadEnv("AWS_ACCESS_KEY"),
				utils.LoadEnv("AWS_SECRET_KEY"),
				s3cfg.Region,
				s3cfg.Bucket,
			)
			if err != nil {
				return fmt.Errorf("fail to init s3 exporter: %w", err)
			}
			Exporter = exporter
			log.Info("s3 leaderboard export enabled")
		}
	}

	// initial reference data; the panel stays LOADING/ERROR until it lands
	if err := refreshMarkets(); err != nil {
		log.Errorf("initial market fetch failed: %v", err)
		Board.SetMarketsState(types.ApiStateError)
	} else {
		log.Infof("%v markets registered", len(Board.MarketNames()))
	}

	// warm the first history page from the archive, if we have one
	if Archive != nil {
		if quotes, err := Archive.LoadHistoryPage(account, 0); err == nil && quotes != nil {
			Board.SetHistoryPage(0, quotes)
			log.Infof("history page 0 warmed from archive: %v quotes", len(quotes))
		}
	}

	// initial balance and live quotes
	if err := refreshBalance(); err != nil {
		log.Warnf("initial balance fetch failed: %v", err)
		Board.SetBalanceState(types.ApiStateError)
	}
	if err := refreshQuotes(); err != nil {
		log.Warnf("initial quote fetch failed: %v", err)
	}

	return nil
}

// subgraph page cap for live quotes; an account holding more than this many
// open quotes at once is outside anything the venue supports
const maxOpenQuotes = 200

func refreshMarkets() error {
	markets, err := Hedger.GetMarkets()
	if err != nil {
		return err
	}
	Board.SetMarkets(markets)
	return nil
}

func refreshQuotes() error {
	quotes, fills, err := QuotesGraph.OpenQuotes(Board.Account(), maxOpenQuotes)
	if err != nil {
		return err
	}
	for _, q := range quotes {
		Board.ReplaceQuote(q)
		if fill, ok := fills[q.Id]; ok {
			Board.SetFillAmount(q.Id, fill)
		}
	}
	return nil
}

func refreshBalance() error {
	info, err := Hedger.GetBalanceInfo(Board.Account().Hex())
	if err != nil {
		return err
	}
	Board.SetBalance(info)
	return nil
}
