package archive

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"perpdesk/pkg/dibs"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

var testAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")

func TestHistoryPageRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	q := &quote.Quote{
		Id:       42,
		MarketId: 1,
		PartyA:   testAccount,
		PartyB:   common.HexToAddress("0x2222222222222222222222222222222222222222"),

		PositionType: types.PositionShort,
		OrderType:    types.OrderMarket,
		Status:       quote.StatusClosed,

		Quantity:        num.FromInt(10),
		ClosedAmount:    num.FromInt(10),
		QuantityToClose: num.Zero(),
		LiquidateAmount: num.Zero(),

		OpenedPrice:              num.FromInt(100),
		RequestedOpenPrice:       num.FromString("99.5"),
		AvgClosedPrice:           num.FromInt(97),
		RequestedCloseLimitPrice: num.Indeterminate,
		LiquidatePrice:           num.Zero(),
		MarketPrice:              num.FromInt(98),

		CVA:      num.FromInt(40),
		LF:       num.FromInt(10),
		PartyAMM: num.FromInt(30),
		PartyBMM: num.FromInt(20),

		InitialCVA:      num.FromInt(40),
		InitialLF:       num.FromInt(10),
		InitialPartyAMM: num.FromInt(30),
		InitialPartyBMM: num.FromInt(20),

		CreateTimestamp:       1_700_000_000,
		StatusModifyTimestamp: 1_700_000_100,
		Deadline:              1_700_003_600,
	}

	if err := store.SaveHistoryPage(testAccount, 0, []*quote.Quote{q}); err != nil {
		t.Fatalf("SaveHistoryPage: %v", err)
	}
	quotes, err := store.LoadHistoryPage(testAccount, 0)
	if err != nil {
		t.Fatalf("LoadHistoryPage: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("got %d quotes", len(quotes))
	}

	got := quotes[0]
	if got.Id != q.Id || got.MarketId != q.MarketId {
		t.Errorf("ids: %d/%d", got.Id, got.MarketId)
	}
	if got.PartyA != q.PartyA || got.PartyB != q.PartyB {
		t.Errorf("parties: %v/%v", got.PartyA, got.PartyB)
	}
	if got.PositionType != q.PositionType || got.OrderType != q.OrderType || got.Status != q.Status {
		t.Errorf("enums: %v/%v/%v", got.PositionType, got.OrderType, got.Status)
	}
	if !got.Quantity.Equal(q.Quantity) || !got.AvgClosedPrice.Equal(q.AvgClosedPrice) {
		t.Errorf("decimals: %v/%v", got.Quantity, got.AvgClosedPrice)
	}
	if !got.RequestedOpenPrice.Equal(num.FromString("99.5")) {
		t.Errorf("fractional decimal: %v", got.RequestedOpenPrice)
	}
	if got.RequestedCloseLimitPrice.Known() {
		t.Error("indeterminate must survive the round trip")
	}
	if !got.LiquidatePrice.IsZero() {
		t.Errorf("zero must stay a determinate zero, got %v", got.LiquidatePrice)
	}
	if got.Deadline != q.Deadline || got.CreateTimestamp != q.CreateTimestamp {
		t.Errorf("timestamps: %d/%d", got.Deadline, got.CreateTimestamp)
	}
}

func TestLeaderboardRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	entries := []dibs.Entry{
		{
			Rank:   1,
			User:   testAccount,
			Volume: num.FromInt(300),
			Share:  num.FromString("0.75"),
			Reward: num.FromInt(750),
		},
		{
			Rank:   2,
			User:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
			Volume: num.FromInt(100),
			Share:  num.FromString("0.25"),
			Reward: num.FromInt(250),
		},
	}
	if err := store.SaveLeaderboard(7, entries); err != nil {
		t.Fatalf("SaveLeaderboard: %v", err)
	}

	got, err := store.LoadLeaderboard(7)
	if err != nil {
		t.Fatalf("LoadLeaderboard: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries", len(got))
	}
	if got[0].Rank != 1 || got[0].User != testAccount {
		t.Errorf("first entry: %+v", got[0])
	}
	if !got[0].Volume.Equal(num.FromInt(300)) || !got[1].Share.Equal(num.FromString("0.25")) {
		t.Errorf("decimals: %v/%v", got[0].Volume, got[1].Share)
	}

	missing, err := store.LoadLeaderboard(8)
	if err != nil || missing != nil {
		t.Errorf("missing day must be nil, nil: %v, %v", missing, err)
	}
}

func TestLoadMissingPageIsColdStart(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	quotes, err := store.LoadHistoryPage(testAccount, 3)
	if err != nil {
		t.Fatalf("missing page must not be an error: %v", err)
	}
	if quotes != nil {
		t.Errorf("missing page must be nil, got %v", quotes)
	}
}
