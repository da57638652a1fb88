package graph

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"perpdesk/pkg/num"
)

// the zero pair aggregates volume across all pairs
const zeroPair = "0x0000000000000000000000000000000000000000"

const dailyVolumesQuery = `
query DailyDataForPairQuery($skip: Int!, $day: BigInt!) {
  dailyGeneratedVolumes(
    first: 100
    skip: $skip
    where: { day: $day, amountAsUser_gt: 0, pair: "` + zeroPair + `" }
    orderBy: amountAsUser
    orderDirection: desc
  ) {
    user
    amountAsUser
  }
}`

const userDailyVolumesQuery = `
query UserDailyVolumes($user: Bytes!) {
  dailyGeneratedVolumes(
    first: 100
    where: { user: $user, amountAsUser_gt: 0, pair: "` + zeroPair + `" }
    orderBy: day
    orderDirection: desc
  ) {
    day
    user
    amountAsUser
  }
}`

// VolumeRow is one leaderboard entry: a user and the volume they generated.
type VolumeRow struct {
	User   common.Address
	Day    int64
	Amount num.Value // trade volume, wei-scaled at the source
}

type volumeEntity struct {
	User         string `json:"user"`
	Day          string `json:"day"`
	AmountAsUser string `json:"amountAsUser"`
}

// DailyVolumes fetches one page (100 rows) of a day's volume leaderboard,
// ordered by volume descending.
func (c *Client) DailyVolumes(day int64, skip int) ([]VolumeRow, error) {
	var res struct {
		DailyGeneratedVolumes []volumeEntity `json:"dailyGeneratedVolumes"`
	}
	vars := map[string]any{"day": day, "skip": skip}
	if err := c.Query(dailyVolumesQuery, vars, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch daily volumes: %w", err)
	}
	rows := make([]VolumeRow, 0, len(res.DailyGeneratedVolumes))
	for _, e := range res.DailyGeneratedVolumes {
		rows = append(rows, VolumeRow{
			User:   common.HexToAddress(e.User),
			Day:    day,
			Amount: num.FromWei(e.AmountAsUser),
		})
	}
	return rows, nil
}

// UserDailyVolumes fetches one user's volume history, newest day first.
func (c *Client) UserDailyVolumes(user common.Address) ([]VolumeRow, error) {
	var res struct {
		DailyGeneratedVolumes []volumeEntity `json:"dailyGeneratedVolumes"`
	}
	vars := map[string]any{"user": user.Hex()}
	if err := c.Query(userDailyVolumesQuery, vars, &res); err != nil {
		return nil, fmt.Errorf("fail to fetch user volumes: %w", err)
	}
	rows := make([]VolumeRow, 0, len(res.DailyGeneratedVolumes))
	for _, e := range res.DailyGeneratedVolumes {
		rows = append(rows, VolumeRow{
			User:   common.HexToAddress(e.User),
			Day:    parseUnix(e.Day),
			Amount: num.FromWei(e.AmountAsUser),
		})
	}
	return rows, nil
}
