package core

import (
	"perpdesk/config"
	"perpdesk/pkg/archive"
	"perpdesk/pkg/dibs"
	"perpdesk/pkg/graph"
	"perpdesk/pkg/hedger"
	"perpdesk/pkg/state"
)

// wired once by Bootstrap, read-only afterwards
var (
	Cfg *config.Config

	Board       *state.Panel
	Hedger      *hedger.Client
	QuotesGraph *graph.Client
	DibsGraph   *graph.Client
	History     *graph.HistoryFetcher
	DibsCfg     dibs.Config

	Archive  *archive.Store
	Exporter *archive.S3Exporter // nil unless S3 export is enabled
)
