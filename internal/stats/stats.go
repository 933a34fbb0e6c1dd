// Package stats is the streak and success-rate engine.
//
// Everything in this package is a pure function: no I/O, no clock reads, no
// shared state. Callers load a habit's completion dates from the repository,
// pick a reference date ("today"), and call in. The same inputs always produce
// the same outputs, which is what makes the date edge cases testable.
//
// DATE CONVENTION:
// All dates are calendar days, represented as time.Time values at midnight UTC
// (see Day). The day boundary is decided once, where a date enters the system —
// parsing a "YYYY-MM-DD" request field or truncating the server clock — and
// never re-derived here. Two completions logged at 23:59 and 00:01 are
// different days even though the instants are two minutes apart.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

const (
	// SuccessRateWindowDays is the trailing window for per-habit success
	// rates. One constant for the whole system — the dashboard, the per-habit
	// listing, and the aggregate stats must all agree on it.
	SuccessRateWindowDays = 21

	// DefaultTrendDays is the trend series length when the caller doesn't ask
	// for a specific one.
	DefaultTrendDays = 30

	// DefaultHistoryDays is the per-habit history length for the calendar view.
	DefaultHistoryDays = 21

	// MaxLookbackDays caps how much completion history callers should load
	// before invoking the engine. Streak math over a year of daily records is
	// already more than the UI ever displays.
	MaxLookbackDays = 365
)

// Day truncates t to its calendar day, anchored at midnight UTC.
// The year/month/day are taken from t's own location, so truncating the
// server clock yields the server-local calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a "YYYY-MM-DD" string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("stats: invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// FormatDay renders a calendar day back to its "YYYY-MM-DD" form.
func FormatDay(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// Streaks holds the two streak measures for one habit.
type Streaks struct {
	Current int // consecutive completed days ending at the reference date
	Best    int // longest run of calendar-consecutive completed days anywhere
}

// HabitActivity is the slice of a habit the aggregate functions need: its ID
// (to look up completions) and its creation day (a habit has no defined
// behaviour before it existed).
type HabitActivity struct {
	ID        string
	CreatedAt time.Time
}

// UserStats aggregates the engine's measures across all of a user's habits.
type UserStats struct {
	ActiveHabits  int `json:"activeHabits"`
	TotalDays     int `json:"totalDays"` // distinct days with any completion (union, not sum)
	SuccessRate   int `json:"successRate"`
	BestStreak    int `json:"bestStreak"`
	CurrentStreak int `json:"currentStreak"`
}

// TrendPoint is one day of the aggregate trend series.
type TrendPoint struct {
	Date        string `json:"date"` // "YYYY-MM-DD"
	SuccessRate int    `json:"successRate"`
}

// DayStatus is one day of a habit's completion history.
type DayStatus struct {
	Date      string `json:"date"` // "YYYY-MM-DD"
	Completed bool   `json:"completed"`
}

// ComputeStreaks computes the current and best streak over a habit's
// completion dates.
//
// The current streak is anchored strictly at reference: we walk backward one
// calendar day at a time from reference, stopping at the first missing day.
// If reference itself is not completed the current streak is 0 — an
// in-progress day that hasn't been completed yet does not count, and does not
// pardon yesterday. (The alternative policy, anchoring at the most recent
// completion, would keep yesterday's streak "alive" until a day is fully
// missed; we deliberately don't do that, so "current streak" always means
// "alive as of today".)
//
// The best streak is the longest run of dates exactly one calendar day apart,
// anywhere in the input. A single isolated completion is a run of length 1.
//
// Duplicate input dates and sub-day precision are ignored: the input is
// reduced to a set of calendar days before anything else.
func ComputeStreaks(dates []time.Time, reference time.Time) Streaks {
	set := daySet(dates)
	if len(set) == 0 {
		return Streaks{}
	}

	var s Streaks

	// Current: walk back from the reference day.
	for d := Day(reference); set[d]; d = d.AddDate(0, 0, -1) {
		s.Current++
	}

	// Best: one ascending scan, tracking the running run length.
	days := sortedDays(set)
	run := 0
	for i, d := range days {
		if i > 0 && d.Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > s.Best {
			s.Best = run
		}
	}

	return s
}

// SuccessRate computes the percentage of completed days in a trailing window
// of windowDays calendar days ending at reference (inclusive).
//
// The window is truncated to start no earlier than the habit's first
// completion: a brand-new habit completed every day since it began reads
// 100%, not penalized for days it didn't exist. Completions dated after
// reference are ignored entirely — future-dated rows must never move a
// past-rate calculation.
//
// Returns 0 when there are no completions on or before reference, exactly
// 100 when every day of the truncated window is completed, and the
// round-half-up percentage otherwise. windowDays < 1 is clamped to 1.
func SuccessRate(dates []time.Time, windowDays int, reference time.Time) int {
	if windowDays < 1 {
		windowDays = 1
	}

	set := daySet(dates)
	if len(set) == 0 {
		return 0
	}

	ref := Day(reference)

	// Earliest completion on or before the reference day.
	var earliest time.Time
	for d := range set {
		if d.After(ref) {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	if earliest.IsZero() {
		return 0 // everything is future-dated
	}

	start := ref.AddDate(0, 0, -(windowDays - 1))
	if earliest.After(start) {
		start = earliest
	}

	total := daysBetween(start, ref) + 1
	completed := 0
	for d := start; !d.After(ref); d = d.AddDate(0, 0, 1) {
		if set[d] {
			completed++
		}
	}

	if completed == total {
		return 100 // exact, no rounding artifact
	}
	return roundPercent(completed, total)
}

// AggregateUserStats combines per-habit streaks and success rates into the
// dashboard totals for one user.
//
// The aggregate success rate is the arithmetic mean of per-habit
// SuccessRateWindowDays rates, rounded half-up. Best and current streak are
// maxima across habits. TotalDays is the number of distinct calendar days on
// which any habit was completed — a union across habits, not a sum, so two
// habits completed on the same day count that day once.
func AggregateUserStats(habits []HabitActivity, completions map[string][]time.Time, reference time.Time) UserStats {
	stats := UserStats{ActiveHabits: len(habits)}
	if len(habits) == 0 {
		return stats
	}

	union := make(map[time.Time]struct{})
	rateSum := 0
	for _, h := range habits {
		dates := completions[h.ID]
		s := ComputeStreaks(dates, reference)
		if s.Best > stats.BestStreak {
			stats.BestStreak = s.Best
		}
		if s.Current > stats.CurrentStreak {
			stats.CurrentStreak = s.Current
		}
		rateSum += SuccessRate(dates, SuccessRateWindowDays, reference)
		for _, d := range dates {
			union[Day(d)] = struct{}{}
		}
	}

	stats.TotalDays = len(union)
	stats.SuccessRate = roundPercent(rateSum, len(habits)*100) // mean of percentages
	return stats
}

// Trend produces the day-by-day aggregate series for plotting: one entry per
// calendar day for days consecutive days ending at reference, oldest first.
//
// Each day's rate is a single-day completion ratio — habits completed that
// day over habits that existed that day (CreatedAt <= d) — not a trailing
// average. Days before any habit existed read 0, but still appear: the
// series always has exactly days entries. days < 1 is clamped to 1.
func Trend(habits []HabitActivity, completions map[string][]time.Time, days int, reference time.Time) []TrendPoint {
	if days < 1 {
		days = 1
	}

	sets := make(map[string]map[time.Time]bool, len(habits))
	for _, h := range habits {
		sets[h.ID] = daySet(completions[h.ID])
	}

	ref := Day(reference)
	series := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := ref.AddDate(0, 0, -i)

		active, completed := 0, 0
		for _, h := range habits {
			if Day(h.CreatedAt).After(d) {
				continue // habit didn't exist yet that day
			}
			active++
			if sets[h.ID][d] {
				completed++
			}
		}

		rate := 0
		if active > 0 {
			rate = roundPercent(completed, active)
		}
		series = append(series, TrendPoint{Date: FormatDay(d), SuccessRate: rate})
	}

	return series
}

// History returns a habit's completed/not-completed status for days
// consecutive days ending at reference, oldest first. days < 1 is clamped
// to 1.
func History(dates []time.Time, days int, reference time.Time) []DayStatus {
	if days < 1 {
		days = 1
	}

	set := daySet(dates)
	ref := Day(reference)
	history := make([]DayStatus, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := ref.AddDate(0, 0, -i)
		history = append(history, DayStatus{Date: FormatDay(d), Completed: set[d]})
	}
	return history
}

// daySet reduces a date slice to a set of calendar days.
func daySet(dates []time.Time) map[time.Time]bool {
	set := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		set[Day(d)] = true
	}
	return set
}

func sortedDays(set map[time.Time]bool) []time.Time {
	days := make([]time.Time, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// daysBetween counts whole calendar days from a to b. Both must be Day
// values, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// roundPercent returns round(100*part/whole) with halves rounding up,
// matching how every revision of the rate math has rounded.
func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
