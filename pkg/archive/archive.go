package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vmihailenco/msgpack/v5"

	"perpdesk/pkg/dibs"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

// Store keeps msgpack snapshots of fetched history pages and finished
// leaderboard days on disk so a restart can warm the panel before the
// subgraph answers. Snapshots are advisory: a failed load is a cold
// start, not an error.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fail to create archive dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// quoteRecord is the wire form of a Quote: decimals as strings, with the
// indeterminate mark round-tripping back to indeterminate.
type quoteRecord struct {
	Id       int64  `msgpack:"id"`
	MarketId int64  `msgpack:"marketId"`
	PartyA   string `msgpack:"partyA"`
	PartyB   string `msgpack:"partyB"`

	PositionType string `msgpack:"positionType"`
	OrderType    string `msgpack:"orderType"`
	Status       string `msgpack:"status"`

	Quantity        string `msgpack:"quantity"`
	ClosedAmount    string `msgpack:"closedAmount"`
	QuantityToClose string `msgpack:"quantityToClose"`
	LiquidateAmount string `msgpack:"liquidateAmount"`

	OpenedPrice              string `msgpack:"openedPrice"`
	RequestedOpenPrice       string `msgpack:"requestedOpenPrice"`
	AvgClosedPrice           string `msgpack:"avgClosedPrice"`
	RequestedCloseLimitPrice string `msgpack:"requestedCloseLimitPrice"`
	LiquidatePrice           string `msgpack:"liquidatePrice"`
	MarketPrice              string `msgpack:"marketPrice"`

	CVA      string `msgpack:"cva"`
	LF       string `msgpack:"lf"`
	PartyAMM string `msgpack:"partyAMM"`
	PartyBMM string `msgpack:"partyBMM"`

	InitialCVA      string `msgpack:"initialCVA"`
	InitialLF       string `msgpack:"initialLF"`
	InitialPartyAMM string `msgpack:"initialPartyAMM"`
	InitialPartyBMM string `msgpack:"initialPartyBMM"`

	CreateTimestamp       int64 `msgpack:"createTimestamp"`
	StatusModifyTimestamp int64 `msgpack:"statusModifyTimestamp"`
	Deadline              int64 `msgpack:"deadline"`
}

func toRecord(q *quote.Quote) quoteRecord {
	return quoteRecord{
		Id:       q.Id,
		MarketId: q.MarketId,
		PartyA:   q.PartyA.Hex(),
		PartyB:   q.PartyB.Hex(),

		PositionType: string(q.PositionType),
		OrderType:    string(q.OrderType),
		Status:       string(q.Status),

		Quantity:        q.Quantity.String(),
		ClosedAmount:    q.ClosedAmount.String(),
		QuantityToClose: q.QuantityToClose.String(),
		LiquidateAmount: q.LiquidateAmount.String(),

		OpenedPrice:              q.OpenedPrice.String(),
		RequestedOpenPrice:       q.RequestedOpenPrice.String(),
		AvgClosedPrice:           q.AvgClosedPrice.String(),
		RequestedCloseLimitPrice: q.RequestedCloseLimitPrice.String(),
		LiquidatePrice:           q.LiquidatePrice.String(),
		MarketPrice:              q.MarketPrice.String(),

		CVA:      q.CVA.String(),
		LF:       q.LF.String(),
		PartyAMM: q.PartyAMM.String(),
		PartyBMM: q.PartyBMM.String(),

		InitialCVA:      q.InitialCVA.String(),
		InitialLF:       q.InitialLF.String(),
		InitialPartyAMM: q.InitialPartyAMM.String(),
		InitialPartyBMM: q.InitialPartyBMM.String(),

		CreateTimestamp:       q.CreateTimestamp,
		StatusModifyTimestamp: q.StatusModifyTimestamp,
		Deadline:              q.Deadline,
	}
}

func fromRecord(r quoteRecord) *quote.Quote {
	return &quote.Quote{
		Id:       r.Id,
		MarketId: r.MarketId,
		PartyA:   common.HexToAddress(r.PartyA),
		PartyB:   common.HexToAddress(r.PartyB),

		PositionType: types.PositionType(r.PositionType),
		OrderType:    types.OrderType(r.OrderType),
		Status:       quote.Status(r.Status),

		Quantity:        num.FromString(r.Quantity),
		ClosedAmount:    num.FromString(r.ClosedAmount),
		QuantityToClose: num.FromString(r.QuantityToClose),
		LiquidateAmount: num.FromString(r.LiquidateAmount),

		OpenedPrice:              num.FromString(r.OpenedPrice),
		RequestedOpenPrice:       num.FromString(r.RequestedOpenPrice),
		AvgClosedPrice:           num.FromString(r.AvgClosedPrice),
		RequestedCloseLimitPrice: num.FromString(r.RequestedCloseLimitPrice),
		LiquidatePrice:           num.FromString(r.LiquidatePrice),
		MarketPrice:              num.FromString(r.MarketPrice),

		CVA:      num.FromString(r.CVA),
		LF:       num.FromString(r.LF),
		PartyAMM: num.FromString(r.PartyAMM),
		PartyBMM: num.FromString(r.PartyBMM),

		InitialCVA:      num.FromString(r.InitialCVA),
		InitialLF:       num.FromString(r.InitialLF),
		InitialPartyAMM: num.FromString(r.InitialPartyAMM),
		InitialPartyBMM: num.FromString(r.InitialPartyBMM),

		CreateTimestamp:       r.CreateTimestamp,
		StatusModifyTimestamp: r.StatusModifyTimestamp,
		Deadline:              r.Deadline,
	}
}

func (s *Store) historyPath(account common.Address, page int) string {
	return filepath.Join(s.dir, fmt.Sprintf("history-%s-p%d.msgpack", account.Hex(), page))
}

// SaveHistoryPage snapshots one page of terminal quotes.
func (s *Store) SaveHistoryPage(account common.Address, page int, quotes []*quote.Quote) error {
	records := make([]quoteRecord, 0, len(quotes))
	for _, q := range quotes {
		records = append(records, toRecord(q))
	}
	data, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("fail to encode history page: %w", err)
	}
	return os.WriteFile(s.historyPath(account, page), data, 0o644)
}

// LoadHistoryPage restores one page; a missing file returns nil, nil.
func (s *Store) LoadHistoryPage(account common.Address, page int) ([]*quote.Quote, error) {
	data, err := os.ReadFile(s.historyPath(account, page))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []quoteRecord
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("fail to decode history page: %w", err)
	}
	quotes := make([]*quote.Quote, 0, len(records))
	for _, r := range records {
		quotes = append(quotes, fromRecord(r))
	}
	return quotes, nil
}

type entryRecord struct {
	Rank   int    `msgpack:"rank"`
	User   string `msgpack:"user"`
	Volume string `msgpack:"volume"`
	Share  string `msgpack:"share"`
	Reward string `msgpack:"reward"`
}

func (s *Store) leaderboardPath(day int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("leaderboard-d%d.msgpack", day))
}

// SaveLeaderboard snapshots one finished day's standings.
func (s *Store) SaveLeaderboard(day int64, entries []dibs.Entry) error {
	records := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, entryRecord{
			Rank:   e.Rank,
			User:   e.User.Hex(),
			Volume: e.Volume.String(),
			Share:  e.Share.String(),
			Reward: e.Reward.String(),
		})
	}
	data, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("fail to encode leaderboard: %w", err)
	}
	return os.WriteFile(s.leaderboardPath(day), data, 0o644)
}

// LoadLeaderboard restores one day's standings; a missing day returns nil, nil.
func (s *Store) LoadLeaderboard(day int64) ([]dibs.Entry, error) {
	data, err := os.ReadFile(s.leaderboardPath(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []entryRecord
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("fail to decode leaderboard: %w", err)
	}
	entries := make([]dibs.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, dibs.Entry{
			Rank:   r.Rank,
			User:   common.HexToAddress(r.User),
			Volume: num.FromString(r.Volume),
			Share:  num.FromString(r.Share),
			Reward: num.FromString(r.Reward),
		})
	}
	return entries, nil
}
