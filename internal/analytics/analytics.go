// Package analytics derives household shower statistics from the
// long-retention log. All reducers are pure; the report endpoint feeds them
// the history snapshot and caches the result.
package analytics

import (
	"math"
	"time"

	"github.com/example/shower-tracker/internal/model"
)

// GallonsPerMinute is the flow-rate estimate behind water usage numbers.
const GallonsPerMinute = 2

// consistencyMinShowers is the sample size below which a user is excluded
// from the consistency ranking.
const consistencyMinShowers = 3

// UserStanding names a user together with a minutes-valued statistic.
type UserStanding struct {
	User    string `json:"user"`
	Minutes int    `json:"minutes"`
}

// Report is the full derived view served by the analytics endpoint.
type Report struct {
	// PeakHours counts showers per hour of day (0-23) per user.
	PeakHours map[string]map[int]int `json:"peakHours"`
	// AvgDurationMinutes is each user's mean shower length, rounded.
	AvgDurationMinutes map[string]int `json:"avgDurationMinutes"`
	// DayOfWeek counts showers per weekday (0=Sunday) per user.
	DayOfWeek map[string]map[int]int `json:"dayOfWeek"`
	// Streaks is each user's current consecutive-day run ending today.
	Streaks map[string]int `json:"streaks"`
	// ShowerCounts is each user's total number of showers.
	ShowerCounts map[string]int `json:"showerCounts"`
	// LongestShower is the single longest shower on record, nil when the
	// log is empty.
	LongestShower *UserStanding `json:"longestShower"`
	// MostConsistent is the user with the lowest duration standard
	// deviation, nil until someone has enough showers to qualify.
	MostConsistent *UserStanding `json:"mostConsistent"`
	// WaterUsageGallons estimates total water used across all showers.
	WaterUsageGallons int `json:"waterUsageGallons"`
	// Leaderboard is the fun-facts ranking block.
	Leaderboard Leaderboard `json:"leaderboard"`
}

// BuildReport runs every reducer over the entries. now anchors the streak
// walk; entry timestamps are interpreted in now's location.
func BuildReport(entries []model.LogEntry, now time.Time) Report {
	return Report{
		PeakHours:          PeakHours(entries, now.Location()),
		AvgDurationMinutes: AvgDuration(entries),
		DayOfWeek:          DayOfWeekFrequency(entries, now.Location()),
		Streaks:            Streaks(entries, now),
		ShowerCounts:       ShowerCounts(entries),
		LongestShower:      LongestShower(entries),
		MostConsistent:     Consistency(entries),
		WaterUsageGallons:  WaterUsage(entries),
		Leaderboard:        BuildLeaderboard(entries, now.Location()),
	}
}

// PeakHours counts showers per start hour per user.
func PeakHours(entries []model.LogEntry, loc *time.Location) map[string]map[int]int {
	result := make(map[string]map[int]int)
	for _, entry := range entries {
		hour := entry.StartedAt.In(loc).Hour()
		if result[entry.User] == nil {
			result[entry.User] = make(map[int]int)
		}
		result[entry.User][hour]++
	}
	return result
}

// AvgDuration returns each user's mean shower length in rounded minutes.
func AvgDuration(entries []model.LogEntry) map[string]int {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, entry := range entries {
		sums[entry.User] += entry.DurationSeconds
		counts[entry.User]++
	}
	result := make(map[string]int, len(sums))
	for user, sum := range sums {
		result[user] = roundToMinutes(float64(sum) / float64(counts[user]))
	}
	return result
}

// DayOfWeekFrequency counts showers per weekday per user, Sunday as 0.
func DayOfWeekFrequency(entries []model.LogEntry, loc *time.Location) map[string]map[int]int {
	result := make(map[string]map[int]int)
	for _, entry := range entries {
		day := int(entry.StartedAt.In(loc).Weekday())
		if result[entry.User] == nil {
			result[entry.User] = make(map[int]int)
		}
		result[entry.User][day]++
	}
	return result
}

// Streaks computes each user's current consecutive-day streak: the number
// of calendar days ending today on which the user showered at least once.
// A user who has not showered today has a streak of zero.
func Streaks(entries []model.LogEntry, now time.Time) map[string]int {
	days := make(map[string]map[string]bool)
	for _, entry := range entries {
		key := entry.StartedAt.In(now.Location()).Format("2006-01-02")
		if days[entry.User] == nil {
			days[entry.User] = make(map[string]bool)
		}
		days[entry.User][key] = true
	}

	result := make(map[string]int, len(days))
	for user, showered := range days {
		streak := 0
		for day := now; showered[day.Format("2006-01-02")]; day = day.AddDate(0, 0, -1) {
			streak++
		}
		result[user] = streak
	}
	return result
}

// ShowerCounts totals showers per user.
func ShowerCounts(entries []model.LogEntry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.User]++
	}
	return counts
}

// LongestShower finds the single longest shower on record. Ties keep the
// earlier entry.
func LongestShower(entries []model.LogEntry) *UserStanding {
	var best *model.LogEntry
	for i := range entries {
		if best == nil || entries[i].DurationSeconds > best.DurationSeconds {
			best = &entries[i]
		}
	}
	if best == nil {
		return nil
	}
	return &UserStanding{User: best.User, Minutes: roundToMinutes(float64(best.DurationSeconds))}
}

// Consistency finds the user whose shower durations vary the least,
// measured as population standard deviation in rounded minutes. Users with
// fewer than three showers are excluded.
func Consistency(entries []model.LogEntry) *UserStanding {
	durations := make(map[string][]float64)
	for _, entry := range entries {
		durations[entry.User] = append(durations[entry.User], float64(entry.DurationSeconds))
	}

	var bestUser string
	bestDev := math.Inf(1)
	for user, times := range durations {
		if len(times) < consistencyMinShowers {
			continue
		}
		mean := 0.0
		for _, t := range times {
			mean += t
		}
		mean /= float64(len(times))
		variance := 0.0
		for _, t := range times {
			variance += (t - mean) * (t - mean)
		}
		variance /= float64(len(times))
		if dev := math.Sqrt(variance); dev < bestDev {
			bestDev = dev
			bestUser = user
		}
	}
	if bestUser == "" {
		return nil
	}
	return &UserStanding{User: bestUser, Minutes: roundToMinutes(bestDev)}
}

// WaterUsage estimates total gallons across all showers.
func WaterUsage(entries []model.LogEntry) int {
	totalSeconds := 0
	for _, entry := range entries {
		totalSeconds += entry.DurationSeconds
	}
	return int(math.Round(float64(totalSeconds) / 60 * GallonsPerMinute))
}

func roundToMinutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}
