package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"perpdesk/pkg/types"
)

type Config struct {
	Hedger   *HedgerConfig   `yaml:"hedger"`
	Subgraph *SubgraphConfig `yaml:"subgraph"`
	Account  *AccountConfig  `yaml:"account"`
	Refresh  *RefreshConfig  `yaml:"refresh"`
	Guides   *GuidesConfig   `yaml:"closeGuides"`
	Dibs     *DibsConfig     `yaml:"dibs"`
	Archive  *ArchiveConfig  `yaml:"archive"`
}

type HedgerConfig struct {
	ApiUrl string `yaml:"apiUrl"`
	WsUrl  string `yaml:"wsUrl"`

	// fall back to Binance premium-index polling instead of the hedger
	// socket; hedger market names are Binance-compatible
	BinanceFallback   bool `yaml:"binanceFallback"`
	FallbackIntervalS int  `yaml:"fallbackIntervalS"`
}

type SubgraphConfig struct {
	QuotesUrl string `yaml:"quotesUrl"`
	DibsUrl   string `yaml:"dibsUrl"`
	ChainId   int64  `yaml:"chainId"`
}

type AccountConfig struct {
	Address string `yaml:"address"`
}

type RefreshConfig struct {
	MarketsIntervalS int `yaml:"marketsIntervalS"`
	BalanceIntervalS int `yaml:"balanceIntervalS"`
	QuotesIntervalS  int `yaml:"quotesIntervalS"`
	HistoryPageSize  int `yaml:"historyPageSize"`
}

type GuidesConfig struct {
	// notional below which a position is only worth closing in full;
	// a venue business rule, kept configurable
	DustNotional string `yaml:"dustNotional"`
}

type DibsConfig struct {
	Epoch       int64  `yaml:"epoch"`
	DailyReward string `yaml:"dailyReward"`
}

type ArchiveConfig struct {
	Dir string    `yaml:"dir"`
	S3  *S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Bucket  string `yaml:"bucket"`
}

func LoadConfig(envName types.EnvName) (*Config, error) {
	yamlFiles := map[types.EnvName]string{
		types.EnvLocal: "perpdesk.yaml",
		types.EnvDev:   "perpdesk.dev.yaml",
		types.EnvProd:  "perpdesk.prod.yaml",
	}
	fileName := yamlFiles[envName]
	data, err := os.ReadFile(fileName)
	if err != nil {
		log.Fatalf("fail to load config file '%s': %v", fileName, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Fatalf("fail to decode config file '%s': %v", fileName, err)
	}
	if err := normalize(&config); err != nil {
		return nil, fmt.Errorf("fail to validate config file '%s': %w", fileName, err)
	}
	return &config, nil
}

const (
	defaultMarketsIntervalS  = 60
	defaultBalanceIntervalS  = 10
	defaultQuotesIntervalS   = 15
	defaultFallbackIntervalS = 5
	defaultHistoryPageSize   = 10
	defaultDustNotional      = "10"
)

// normalize rejects a config missing its endpoint sections and fills every
// omitted or non-positive tuning knob with its default, so tickers and
// page sizes never see zero.
func normalize(cfg *Config) error {
	if cfg.Hedger == nil || cfg.Subgraph == nil || cfg.Account == nil {
		return fmt.Errorf("hedger, subgraph and account sections are required")
	}
	if cfg.Refresh == nil {
		cfg.Refresh = &RefreshConfig{}
	}
	if cfg.Refresh.MarketsIntervalS <= 0 {
		cfg.Refresh.MarketsIntervalS = defaultMarketsIntervalS
	}
	if cfg.Refresh.BalanceIntervalS <= 0 {
		cfg.Refresh.BalanceIntervalS = defaultBalanceIntervalS
	}
	if cfg.Refresh.QuotesIntervalS <= 0 {
		cfg.Refresh.QuotesIntervalS = defaultQuotesIntervalS
	}
	if cfg.Refresh.HistoryPageSize <= 0 {
		cfg.Refresh.HistoryPageSize = defaultHistoryPageSize
	}
	if cfg.Hedger.FallbackIntervalS <= 0 {
		cfg.Hedger.FallbackIntervalS = defaultFallbackIntervalS
	}
	if cfg.Guides == nil {
		cfg.Guides = &GuidesConfig{}
	}
	if cfg.Guides.DustNotional == "" {
		cfg.Guides.DustNotional = defaultDustNotional
	}
	if cfg.Dibs == nil {
		cfg.Dibs = &DibsConfig{}
	}
	return nil
}
