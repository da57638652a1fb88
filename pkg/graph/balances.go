package graph

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"perpdesk/pkg/num"
)

const balanceChangesQuery = `
query BalanceChanges($account: String!, $first: Int!, $skip: Int!) {
  balanceChanges(
    where: { account: $account, type_not: "ALLOCATE_PARTY_A" }
    first: $first
    skip: $skip
    orderBy: timestamp
    orderDirection: desc
  ) {
    amount
    timestamp
    transaction
    account
    type
  }
}`

const depositsQuery = `
query TotalDepositsAndWithdrawals($id: String!) {
  accounts(where: { id: $id }) {
    id
    timestamp
    withdraw
    deposit
    updateTimestamp
  }
}`

// BalanceChange is one collateral movement on the account.
type BalanceChange struct {
	Account     common.Address
	Type        string // DEPOSIT, WITHDRAW, DEALLOCATE_PARTY_A, ...
	Amount      num.Value
	Timestamp   int64
	Transaction string
}

func (c *Client) BalanceChanges(account common.Address, first, skip int) ([]BalanceChange, error) {
	var res struct {
		BalanceChanges []struct {
			Amount      string `json:"amount"`
			Timestamp   string `json:"timestamp"`
			Transaction string `json:"transaction"`
			Account     string `json:"account"`
			Type        string `json:"type"`
		} `json:"balanceChanges"`
	}
	vars := map[string]any{
		"account": strings.ToLower(account.Hex()),
		"first":   first,
		"skip":    skip,
	}
	if err := c.Query(balanceChangesQuery, vars, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch balance changes: %w", err)
	}
	out := make([]BalanceChange, 0, len(res.BalanceChanges))
	for _, e := range res.BalanceChanges {
		out = append(out, BalanceChange{
			Account:     common.HexToAddress(e.Account),
			Type:        e.Type,
			Amount:      num.FromWei(e.Amount),
			Timestamp:   parseUnix(e.Timestamp),
			Transaction: e.Transaction,
		})
	}
	return out, nil
}

// AccountTotals is the lifetime deposit/withdraw sums for an account.
type AccountTotals struct {
	Deposit         num.Value
	Withdraw        num.Value
	Timestamp       int64
	UpdateTimestamp int64
}

func (c *Client) TotalDepositsAndWithdrawals(account common.Address) (*AccountTotals, error) {
	var res struct {
		Accounts []struct {
			Timestamp       string `json:"timestamp"`
			Withdraw        string `json:"withdraw"`
			Deposit         string `json:"deposit"`
			UpdateTimestamp string `json:"updateTimestamp"`
		} `json:"accounts"`
	}
	vars := map[string]any{"id": strings.ToLower(account.Hex())}
	if err := c.Query(depositsQuery, vars, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch account totals: %w", err)
	}
	if len(res.Accounts) == 0 {
		return nil, nil
	}
	a := res.Accounts[0]
	return &AccountTotals{
		Deposit:         num.FromWei(a.Deposit),
		Withdraw:        num.FromWei(a.Withdraw),
		Timestamp:       parseUnix(a.Timestamp),
		UpdateTimestamp: parseUnix(a.UpdateTimestamp),
	}, nil
}
