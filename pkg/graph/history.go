package graph

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/types"
)

// terminal statuses only: CANCELED, CLOSED, LIQUIDATED, EXPIRED
const orderHistoryQuery = `
query OrderHistory($address: String!, $first: Int!, $skip: Int!) {
  resultEntities(
    first: $first
    skip: $skip
    orderBy: timeStamp
    orderDirection: desc
    where: { partyA: $address, quoteStatus_in: [3, 7, 8, 9] }
  ) {
    orderTypeOpen
    partyAmm
    partyBmm
    lf
    cva
    partyA
    partyB
    quoteId
    quoteStatus
    positionType
    quantity
    openedPrice
    requestedOpenPrice
    quantityToClose
    timeStamp
    deadline
    symbolId
    marketPrice
    averageClosedPrice
    liquidateAmount
    liquidatePrice
    closedAmount
    initialData {
      cva
      lf
      partyAmm
      partyBmm
      timeStamp
    }
  }
}`

// live quotes only: PENDING..CLOSE_PENDING plus CANCEL_CLOSE_PENDING
const openQuotesQuery = `
query OpenQuotes($address: String!, $first: Int!) {
  resultEntities(
    first: $first
    orderBy: timeStamp
    orderDirection: desc
    where: { partyA: $address, quoteStatus_in: [0, 1, 2, 4, 5, 6] }
  ) {
    orderTypeOpen
    partyAmm
    partyBmm
    lf
    cva
    partyA
    partyB
    quoteId
    quoteStatus
    positionType
    quantity
    openedPrice
    requestedOpenPrice
    quantityToClose
    timeStamp
    deadline
    symbolId
    fillAmount
    marketPrice
    averageClosedPrice
    liquidateAmount
    liquidatePrice
    closedAmount
    initialData {
      cva
      lf
      partyAmm
      partyBmm
      timeStamp
    }
  }
}`

const paidAmountQuery = `
query GetPaidAmount($id: String!) {
  resultEntities(where: { quoteId: $id }) {
    fee
  }
}`

type initialData struct {
	Cva       string `json:"cva"`
	Lf        string `json:"lf"`
	PartyAmm  string `json:"partyAmm"`
	PartyBmm  string `json:"partyBmm"`
	TimeStamp string `json:"timeStamp"`
}

type resultEntity struct {
	OrderTypeOpen      int         `json:"orderTypeOpen"`
	PartyAmm           string      `json:"partyAmm"`
	PartyBmm           string      `json:"partyBmm"`
	Lf                 string      `json:"lf"`
	Cva                string      `json:"cva"`
	PartyA             string      `json:"partyA"`
	PartyB             string      `json:"partyB"`
	QuoteId            string      `json:"quoteId"`
	QuoteStatus        int         `json:"quoteStatus"`
	PositionType       int         `json:"positionType"`
	Quantity           string      `json:"quantity"`
	OpenedPrice        string      `json:"openedPrice"`
	RequestedOpenPrice string      `json:"requestedOpenPrice"`
	QuantityToClose    string      `json:"quantityToClose"`
	TimeStamp          string      `json:"timeStamp"`
	Deadline           string      `json:"deadline"`
	SymbolId           string      `json:"symbolId"`
	FillAmount         string      `json:"fillAmount"`
	MarketPrice        string      `json:"marketPrice"`
	AverageClosedPrice string      `json:"averageClosedPrice"`
	LiquidateAmount    string      `json:"liquidateAmount"`
	LiquidatePrice     string      `json:"liquidatePrice"`
	ClosedAmount       string      `json:"closedAmount"`
	InitialData        initialData `json:"initialData"`
}

// toQuote maps one subgraph entity onto a Quote, converting the wei-scaled
// numeric strings into decimals field by field.
func toQuote(e resultEntity) (*quote.Quote, error) {
	id, err := strconv.ParseInt(e.QuoteId, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("fail to parse quoteId %q: %w", e.QuoteId, err)
	}
	marketId, err := strconv.ParseInt(e.SymbolId, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("fail to parse symbolId %q: %w", e.SymbolId, err)
	}
	status, err := quote.FromIndex(e.QuoteStatus)
	if err != nil {
		return nil, err
	}

	positionType := types.PositionLong
	if e.PositionType == 1 {
		positionType = types.PositionShort
	}
	orderType := types.OrderLimit
	if e.OrderTypeOpen == 1 {
		orderType = types.OrderMarket
	}

	q := &quote.Quote{
		Id:       id,
		MarketId: marketId,
		PartyA:   common.HexToAddress(e.PartyA),
		PartyB:   common.HexToAddress(e.PartyB),

		PositionType: positionType,
		OrderType:    orderType,
		Status:       status,

		Quantity:        num.FromWei(e.Quantity),
		ClosedAmount:    num.FromWei(e.ClosedAmount),
		QuantityToClose: num.FromWei(e.QuantityToClose),
		LiquidateAmount: num.FromWei(e.LiquidateAmount),

		OpenedPrice:        num.FromWei(e.OpenedPrice),
		RequestedOpenPrice: num.FromWei(e.RequestedOpenPrice),
		AvgClosedPrice:     num.FromWei(e.AverageClosedPrice),
		LiquidatePrice:     num.FromWei(e.LiquidatePrice),
		MarketPrice:        num.FromWei(e.MarketPrice),

		CVA:      num.FromWei(e.Cva),
		LF:       num.FromWei(e.Lf),
		PartyAMM: num.FromWei(e.PartyAmm),
		PartyBMM: num.FromWei(e.PartyBmm),

		InitialCVA:      num.FromWei(e.InitialData.Cva),
		InitialLF:       num.FromWei(e.InitialData.Lf),
		InitialPartyAMM: num.FromWei(e.InitialData.PartyAmm),
		InitialPartyBMM: num.FromWei(e.InitialData.PartyBmm),

		StatusModifyTimestamp: parseUnix(e.TimeStamp),
		CreateTimestamp:       parseUnix(e.InitialData.TimeStamp),
		Deadline:              parseUnix(e.Deadline),
	}
	return q, nil
}

func parseUnix(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// HistoryPage is one page of terminal quotes for an account.
type HistoryPage struct {
	Account common.Address
	Page    int
	Quotes  []*quote.Quote
	HasMore bool
}

// ErrSuperseded marks a fetch whose result arrived after a newer request
// was issued. It is not a failure; the caller discards the page silently.
var ErrSuperseded = errors.New("history fetch superseded")

// HistoryFetcher pages through an account's order history. Overlapping
// fetches follow last-request-wins: whichever request was issued last is
// authoritative and earlier in-flight results are discarded on arrival.
type HistoryFetcher struct {
	client   *Client
	pageSize int

	mu   sync.Mutex
	seq  uint64
	last uint64 // id of the most recently issued request
}

func NewHistoryFetcher(client *Client, pageSize int) *HistoryFetcher {
	return &HistoryFetcher{client: client, pageSize: pageSize}
}

func (f *HistoryFetcher) begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.last = f.seq
	return f.seq
}

func (f *HistoryFetcher) superseded(id uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return id != f.last
}

// Fetch loads one page. It requests one extra row to learn whether another
// page exists, mirroring the paginated panel.
func (f *HistoryFetcher) Fetch(account common.Address, page int) (*HistoryPage, error) {
	id := f.begin()

	var res struct {
		ResultEntities []resultEntity `json:"resultEntities"`
	}
	vars := map[string]any{
		"address": account.Hex(),
		"first":   f.pageSize + 1,
		"skip":    page * f.pageSize,
	}
	if err := f.client.Query(orderHistoryQuery, vars, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch order history: %w", err)
	}
	if f.superseded(id) {
		return nil, ErrSuperseded
	}

	quotes := make([]*quote.Quote, 0, len(res.ResultEntities))
	for _, e := range res.ResultEntities {
		q, err := toQuote(e)
		if err != nil {
			// one malformed entity degrades that row only
			log.Warnf("fail to map history entity: %v", err)
			continue
		}
		if err := q.Validate(); err != nil {
			log.Warnf("dropping malformed quote: %v", err)
			continue
		}
		quotes = append(quotes, q)
	}

	hasMore := len(res.ResultEntities) > f.pageSize
	if len(quotes) > f.pageSize {
		quotes = quotes[:f.pageSize]
	}
	return &HistoryPage{Account: account, Page: page, Quotes: quotes, HasMore: hasMore}, nil
}

// OpenQuotes loads every live (non-terminal) quote for an account, along
// with the hedger fill amount per quote id for quotes the subgraph reports
// one for.
func (c *Client) OpenQuotes(account common.Address, first int) ([]*quote.Quote, map[int64]num.Value, error) {
	var res struct {
		ResultEntities []resultEntity `json:"resultEntities"`
	}
	vars := map[string]any{
		"address": account.Hex(),
		"first":   first,
	}
	if err := c.Query(openQuotesQuery, vars, &res); err != nil {
		return nil, nil, fmt.Errorf("fail to fetch open quotes: %w", err)
	}

	quotes := make([]*quote.Quote, 0, len(res.ResultEntities))
	fills := make(map[int64]num.Value)
	for _, e := range res.ResultEntities {
		q, err := toQuote(e)
		if err != nil {
			log.Warnf("fail to map open quote entity: %v", err)
			continue
		}
		if err := q.Validate(); err != nil {
			log.Warnf("dropping malformed quote: %v", err)
			continue
		}
		quotes = append(quotes, q)
		if fill := num.FromWei(e.FillAmount); fill.Known() {
			fills[q.Id] = fill
		}
	}
	return quotes, fills, nil
}

// PaidAmount is the platform fee paid for a quote, in collateral units.
func (c *Client) PaidAmount(quoteId int64) (num.Value, error) {
	var res struct {
		ResultEntities []struct {
			Fee string `json:"fee"`
		} `json:"resultEntities"`
	}
	vars := map[string]any{"id": strconv.FormatInt(quoteId, 10)}
	if err := c.Query(paidAmountQuery, vars, &res); err != nil {
		return num.Indeterminate, err
	}
	if len(res.ResultEntities) == 0 {
		return num.Indeterminate, nil
	}
	return num.FromWei(res.ResultEntities[0].Fee), nil
}
