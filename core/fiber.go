package core

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"perpdesk/pkg/dibs"
	"perpdesk/pkg/num"
	"perpdesk/pkg/quote"
	"perpdesk/pkg/valuation"
)

func SetupFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "perpdesk",
	})

	app.Get("/health", handleHealth)
	app.Get("/markets", handleMarkets)
	app.Get("/markets/:name/limits", handleMarketLimits)
	app.Get("/positions", handlePositions)
	app.Get("/pending", handlePending)
	app.Get("/history", handleHistory)
	app.Get("/quotes/:id/fee", handleQuoteFee)
	app.Get("/balance", handleBalance)
	app.Get("/account", handleAccount)
	app.Get("/errors/:code", handleErrorCode)
	app.Get("/leaderboard", handleLeaderboard)
	app.Get("/leaderboard/users/:address", handleUserVolumes)

	return app
}

func ShutdownFiberApp(app *fiber.App) {
	_ = app.Shutdown()
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func handleHealth(c *fiber.Ctx) error {
	markets, prices, history, balance := Board.States()
	return ok(c, fiber.Map{
		"markets": markets,
		"prices":  prices,
		"history": history,
		"balance": balance,
	})
}

func handleMarkets(c *fiber.Ctx) error {
	snap := Board.Snapshot(time.Now())
	out := make([]fiber.Map, 0, len(snap.Markets))
	for _, m := range snap.Markets {
		data, _ := snap.Data(m.Name)
		out = append(out, fiber.Map{
			"id":                      m.Id,
			"name":                    m.Name,
			"symbol":                  m.Symbol,
			"asset":                   m.Asset,
			"pricePrecision":          m.PricePrecision,
			"quantityPrecision":       m.QuantityPrecision,
			"tradingFee":              m.TradingFee,
			"maxLeverage":             m.MaxLeverage,
			"minAcceptableQuoteValue": m.MinAcceptableQuoteValue,
			"markPrice":               data.MarkPrice,
			"indexPrice":              data.IndexPrice,
			"fundingRate":             data.FundingRate,
			"nextFundingTime":         data.NextFundingTime,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["id"].(int64) < out[j]["id"].(int64)
	})
	return ok(c, out)
}

// handleMarketLimits serves the venue limits the hedger enforces per market:
// the notional cap and the tradable price band.
func handleMarketLimits(c *fiber.Ctx) error {
	name := c.Params("name")
	notionalCap, err := Hedger.GetNotionalCap(name)
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch notional cap")
	}
	priceRange, err := Hedger.GetPriceRange(name)
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch price range")
	}
	return ok(c, fiber.Map{
		"name":     name,
		"totalCap": notionalCap.TotalCap,
		"used":     notionalCap.Used,
		"minPrice": priceRange.MinPrice,
		"maxPrice": priceRange.MaxPrice,
	})
}

func handlePositions(c *fiber.Ctx) error {
	quotes, fills := Board.Positions()
	return ok(c, buildRows(quotes, fills))
}

func handlePending(c *fiber.Ctx) error {
	quotes, fills := Board.Pendings()
	return ok(c, buildRows(quotes, fills))
}

func handleHistory(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	if page < 0 {
		return fail(c, fiber.StatusBadRequest, "page must be non-negative")
	}
	quotes := Board.HistoryPage(page)
	if quotes == nil {
		// not cached yet, pull it now
		if err := refreshHistoryPage(page); err != nil {
			return fail(c, fiber.StatusBadGateway, "fail to fetch history page")
		}
		quotes = Board.HistoryPage(page)
	}
	return ok(c, buildRows(quotes, nil))
}

// handleQuoteFee serves the platform fee paid for one quote.
func handleQuoteFee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return fail(c, fiber.StatusBadRequest, "invalid quote id")
	}
	fee, err := QuotesGraph.PaidAmount(int64(id))
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch paid amount")
	}
	return ok(c, fiber.Map{"quoteId": id, "paidAmount": fee})
}

func handleBalance(c *fiber.Ctx) error {
	info, state := Board.Balance()
	if info == nil {
		return ok(c, fiber.Map{"state": state})
	}
	return ok(c, fiber.Map{
		"state":              state,
		"address":            info.Address,
		"allocatedBalance":   info.AllocatedBalance,
		"totalLocked":        info.TotalLocked,
		"totalPendingLocked": info.TotalPendingLocked,
		"upnl":               info.Upnl,
		"notional":           info.Notional,
		"availableBalance":   info.AvailableBalance,
		"liquidationStatus":  info.LiquidationStatus,
		"timestamp":          info.Timestamp,
	})
}

// handleAccount serves the collateral movement history: lifetime deposit and
// withdraw totals plus the most recent balance changes.
func handleAccount(c *fiber.Ctx) error {
	first := c.QueryInt("first", 20)
	skip := c.QueryInt("skip", 0)
	if first <= 0 || skip < 0 {
		return fail(c, fiber.StatusBadRequest, "invalid pagination")
	}
	totals, err := QuotesGraph.TotalDepositsAndWithdrawals(Board.Account())
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch account totals")
	}
	changes, err := QuotesGraph.BalanceChanges(Board.Account(), first, skip)
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch balance changes")
	}

	changeList := make([]fiber.Map, 0, len(changes))
	for _, ch := range changes {
		changeList = append(changeList, fiber.Map{
			"type":        ch.Type,
			"amount":      ch.Amount,
			"timestamp":   ch.Timestamp,
			"transaction": ch.Transaction,
		})
	}
	out := fiber.Map{
		"address": Board.Account().Hex(),
		"changes": changeList,
	}
	if totals != nil {
		out["totalDeposit"] = totals.Deposit
		out["totalWithdraw"] = totals.Withdraw
	}
	return ok(c, out)
}

func handleLeaderboard(c *fiber.Ctx) error {
	day := int64(c.QueryInt("day", int(DibsCfg.DayOf(time.Now()))))
	if day < 0 {
		return fail(c, fiber.StatusBadRequest, "day must be non-negative")
	}
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		return fail(c, fiber.StatusBadRequest, "skip must be non-negative")
	}

	var entries []dibs.Entry
	rows, err := DibsGraph.DailyVolumes(day, skip)
	if err != nil {
		// a finished day may still be served from the archive
		if Archive != nil && skip == 0 {
			entries, _ = Archive.LoadLeaderboard(day)
		}
		if entries == nil {
			return fail(c, fiber.StatusBadGateway, "fail to fetch daily volumes")
		}
	} else {
		entries = dibs.BuildLeaderboard(rows, DibsCfg)
	}

	out := fiber.Map{"day": day, "entries": entries}
	if standing, found := dibs.Standing(entries, Board.Account()); found {
		out["standing"] = standing
	}
	return ok(c, out)
}

// handleUserVolumes serves one user's daily volume history, newest first.
func handleUserVolumes(c *fiber.Ctx) error {
	address := c.Params("address")
	if !common.IsHexAddress(address) {
		return fail(c, fiber.StatusBadRequest, "invalid address")
	}
	rows, err := DibsGraph.UserDailyVolumes(common.HexToAddress(address))
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch user volumes")
	}
	days := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		days = append(days, fiber.Map{"day": r.Day, "volume": r.Amount})
	}
	return ok(c, fiber.Map{"user": common.HexToAddress(address).Hex(), "days": days})
}

// handleErrorCode translates a hedger error code to its message.
func handleErrorCode(c *fiber.Ctx) error {
	code, err := c.ParamsInt("code")
	if err != nil || code < 0 {
		return fail(c, fiber.StatusBadRequest, "invalid error code")
	}
	msg, err := Hedger.ErrorMessage(code)
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "fail to fetch error codes")
	}
	return ok(c, fiber.Map{"code": code, "message": msg})
}

func buildRows(quotes []*quote.Quote, fills map[int64]num.Value) []valuation.Row {
	snap := Board.Snapshot(time.Now())
	rows := make([]valuation.Row, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, valuation.BuildRow(snap, q, fills[q.Id]))
	}
	return rows
}
