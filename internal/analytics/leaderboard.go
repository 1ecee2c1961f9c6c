package analytics

import (
	"math"
	"time"

	"github.com/example/shower-tracker/internal/model"
)

// nightOwlWrapHour folds small-hour showers past midnight: a 2am shower is
// a late night, not an early morning, so hours below this threshold count
// as hour+24 when ranking.
const nightOwlWrapHour = 5

// CountStanding names a user together with a count-valued statistic.
type CountStanding struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// HourStanding names a user together with their average shower hour.
type HourStanding struct {
	User    string `json:"user"`
	AvgHour int    `json:"avgHour"`
}

// Leaderboard is the fun-facts block of the analytics view. Empty logs
// produce placeholder entries rather than nils so the rendering stays flat.
type Leaderboard struct {
	MostShowers CountStanding `json:"mostShowers"`
	LongestAvg  UserStanding  `json:"longestAvg"`
	EarlyBird   HourStanding  `json:"earlyBird"`
	NightOwl    HourStanding  `json:"nightOwl"`
}

// BuildLeaderboard ranks users by shower count, average duration, and
// average time of day. Entry timestamps are interpreted in loc.
func BuildLeaderboard(entries []model.LogEntry, loc *time.Location) Leaderboard {
	board := Leaderboard{
		MostShowers: CountStanding{User: "-"},
		LongestAvg:  UserStanding{User: "-"},
		EarlyBird:   HourStanding{User: "-"},
		NightOwl:    HourStanding{User: "-"},
	}
	if len(entries) == 0 {
		return board
	}

	counts := ShowerCounts(entries)
	for user, count := range counts {
		if count > board.MostShowers.Count {
			board.MostShowers = CountStanding{User: user, Count: count}
		}
	}

	avgs := AvgDuration(entries)
	bestAvg := -1
	for user, minutes := range avgs {
		if minutes > bestAvg {
			bestAvg = minutes
			board.LongestAvg = UserStanding{User: user, Minutes: minutes}
		}
	}

	hourSums := make(map[string]float64)
	for _, entry := range entries {
		hour := float64(entry.StartedAt.In(loc).Hour())
		if hour < nightOwlWrapHour {
			hour += 24
		}
		hourSums[entry.User] += hour
	}
	earliest, latest := math.Inf(1), math.Inf(-1)
	for user, sum := range hourSums {
		avg := sum / float64(counts[user])
		if avg < earliest {
			earliest = avg
			board.EarlyBird = HourStanding{User: user, AvgHour: int(math.Round(avg)) % 24}
		}
		if avg > latest {
			latest = avg
			board.NightOwl = HourStanding{User: user, AvgHour: int(math.Round(avg)) % 24}
		}
	}
	return board
}
