package dibs

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"perpdesk/pkg/graph"
	"perpdesk/pkg/num"
)

// Config is the Trade2Earn program's parameters.
type Config struct {
	Epoch       int64     // unix seconds of program day zero, UTC
	DailyReward num.Value // reward tokens distributed per day
}

// DayOf maps a wall-clock instant to a program day index.
func (c Config) DayOf(t time.Time) int64 {
	d := (t.UTC().Unix() - c.Epoch) / 86400
	if d < 0 {
		return 0
	}
	return d
}

// Entry is one ranked leaderboard line. Share and Reward are proportional
// to the user's slice of the day's total volume.
type Entry struct {
	Rank   int            `json:"rank"`
	User   common.Address `json:"user"`
	Volume num.Value      `json:"volume"`
	Share  num.Value      `json:"share"`  // fraction of the day's volume
	Reward num.Value      `json:"reward"` // DailyReward × Share
}

// BuildLeaderboard ranks a day's volume rows and assigns each user their
// volume share and reward. Rows with indeterminate volume are dropped; a
// day with zero total volume yields no entries.
func BuildLeaderboard(rows []graph.VolumeRow, cfg Config) []Entry {
	total := num.Zero()
	kept := make([]graph.VolumeRow, 0, len(rows))
	for _, r := range rows {
		if !r.Amount.Known() {
			continue
		}
		kept = append(kept, r)
		total = total.Add(r.Amount)
	}
	if total.IsZero() {
		return nil
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Amount.GreaterThan(kept[j].Amount)
	})

	entries := make([]Entry, 0, len(kept))
	for i, r := range kept {
		share := r.Amount.Div(total)
		entries = append(entries, Entry{
			Rank:   i + 1,
			User:   r.User,
			Volume: r.Amount,
			Share:  share,
			Reward: cfg.DailyReward.Mul(share),
		})
	}
	return entries
}

// Standing finds a user's entry on the board.
func Standing(entries []Entry, user common.Address) (Entry, bool) {
	for _, e := range entries {
		if e.User == user {
			return e, true
		}
	}
	return Entry{}, false
}
