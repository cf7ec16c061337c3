// Package stats derives a user's summary statistics from their round history.
//
// A Summary is a disposable projection: it can always be rebuilt from the
// user's rounds and is never edited in place.
package stats

import (
	"fmt"
	"math"
	"time"

	"golf-tracker/internal/golf"
)

type Window struct {
	AverageScore float64  `json:"averageScore"`
	Improvement  float64  `json:"improvement"`
	Dates        []string `json:"dates,omitempty"`
}

type Year struct {
	Rounds       int     `json:"rounds"`
	AverageScore float64 `json:"averageScore"`
}

type CourseStats struct {
	CourseName   string  `json:"courseName"`
	Rounds       int     `json:"rounds"`
	AverageScore float64 `json:"averageScore"`
	BestScore    int     `json:"bestScore"`
}

type MonthStats struct {
	Rounds       int     `json:"rounds"`
	AverageScore float64 `json:"averageScore"`
}

type Summary struct {
	UserID          string                 `json:"userId"`
	TotalRounds     int                    `json:"totalRounds"`
	AverageScore    float64                `json:"averageScore"`
	BestScore       int                    `json:"bestScore"`
	WorstScore      int                    `json:"worstScore"`
	CurrentHandicap float64                `json:"currentHandicap"`
	Last5Rounds     Window                 `json:"last5Rounds"`
	Last10Rounds    Window                 `json:"last10Rounds"`
	ThisYear        Year                   `json:"thisYear"`
	CourseStats     map[string]CourseStats `json:"courseStats"`
	MonthlyStats    map[string]MonthStats  `json:"monthlyStats"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// Empty is the summary of a user with no rounds.
func Empty(userID string, now time.Time) Summary {
	return Summary{
		UserID:       userID,
		Last5Rounds:  Window{Dates: []string{}},
		CourseStats:  map[string]CourseStats{},
		MonthlyStats: map[string]MonthStats{},
		UpdatedAt:    now,
	}
}

// Aggregate computes the summary of rounds, which must be ordered most recent
// first and carry their totals.
func Aggregate(userID string, rounds []golf.Round, now time.Time) Summary {
	s := Empty(userID, now)
	if len(rounds) == 0 {
		return s
	}

	s.TotalRounds = len(rounds)
	s.AverageScore = mean(rounds)
	s.BestScore, s.WorstScore = rounds[0].TotalScore, rounds[0].TotalScore
	for _, r := range rounds[1:] {
		s.BestScore = min(s.BestScore, r.TotalScore)
		s.WorstScore = max(s.WorstScore, r.TotalScore)
	}

	s.Last5Rounds = window(rounds, 5)
	s.Last5Rounds.Dates = make([]string, 0, 5)
	for _, r := range head(rounds, 5) {
		s.Last5Rounds.Dates = append(s.Last5Rounds.Dates, r.PlayDate)
	}
	s.Last10Rounds = window(rounds, 10)

	var thisYear []golf.Round
	monthly := map[string][]golf.Round{}
	for _, r := range rounds {
		d, err := golf.ParsePlayDate(r.PlayDate)
		if err != nil {
			continue
		}
		if d.Year() == now.Year() {
			thisYear = append(thisYear, r)
		}
		key := d.Format("2006-01")
		monthly[key] = append(monthly[key], r)
	}
	s.ThisYear = Year{Rounds: len(thisYear), AverageScore: mean(thisYear)}
	for key, rs := range monthly {
		s.MonthlyStats[key] = MonthStats{Rounds: len(rs), AverageScore: mean(rs)}
	}

	totals := map[string]int{}
	for _, r := range rounds {
		cs, ok := s.CourseStats[r.CourseID]
		if !ok {
			cs = CourseStats{CourseName: r.CourseName, BestScore: r.TotalScore}
		}
		cs.Rounds++
		cs.BestScore = min(cs.BestScore, r.TotalScore)
		totals[r.CourseID] += r.TotalScore
		s.CourseStats[r.CourseID] = cs
	}
	for id, cs := range s.CourseStats {
		cs.AverageScore = float64(totals[id]) / float64(cs.Rounds)
		s.CourseStats[id] = cs
	}

	return s
}

// window averages the n most recent rounds. Improvement compares it with the
// n rounds before it: positive means the recent average is lower.
func window(rounds []golf.Round, n int) Window {
	w := Window{AverageScore: mean(head(rounds, n))}
	if len(rounds) > n {
		prev := head(rounds[n:], n)
		w.Improvement = mean(prev) - w.AverageScore
	}
	return w
}

func head(rounds []golf.Round, n int) []golf.Round {
	if len(rounds) < n {
		return rounds
	}
	return rounds[:n]
}

func mean(rounds []golf.Round) float64 {
	if len(rounds) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rounds {
		sum += r.TotalScore
	}
	return float64(sum) / float64(len(rounds))
}

// Round1 rounds to one decimal. Only used when presenting a summary.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Display renders the floating fields of s the way the dashboard shows them.
func Display(s Summary) map[string]string {
	f := func(v float64) string { return fmt.Sprintf("%.1f", Round1(v)) }
	return map[string]string{
		"averageScore":         f(s.AverageScore),
		"last5AverageScore":    f(s.Last5Rounds.AverageScore),
		"last5Improvement":     f(s.Last5Rounds.Improvement),
		"last10AverageScore":   f(s.Last10Rounds.AverageScore),
		"last10Improvement":    f(s.Last10Rounds.Improvement),
		"thisYearAverageScore": f(s.ThisYear.AverageScore),
		"currentHandicap":      f(s.CurrentHandicap),
	}
}
