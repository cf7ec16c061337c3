package stats

import (
	"fmt"
	"testing"
	"time"

	"golf-tracker/internal/golf"
)

var now = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.Local)

func round(course string, date string, score int) golf.Round {
	return golf.Round{
		ID:         fmt.Sprintf("%s-%s-%d", course, date, score),
		CourseID:   course,
		CourseName: "Course " + course,
		PlayDate:   date,
		TotalScore: score,
		TotalPar:   72,
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate("u1", nil, now)

	if s.UserID != "u1" {
		t.Errorf("UserID = %q", s.UserID)
	}
	if s.TotalRounds != 0 || s.AverageScore != 0 || s.BestScore != 0 || s.WorstScore != 0 || s.CurrentHandicap != 0 {
		t.Errorf("numeric fields not zero: %+v", s)
	}
	if s.Last5Rounds.AverageScore != 0 || s.Last5Rounds.Improvement != 0 || len(s.Last5Rounds.Dates) != 0 {
		t.Errorf("last5 = %+v", s.Last5Rounds)
	}
	if s.Last5Rounds.Dates == nil {
		t.Error("last5 dates should be an empty list, not nil")
	}
	if s.Last10Rounds.AverageScore != 0 || s.ThisYear.Rounds != 0 || s.ThisYear.AverageScore != 0 {
		t.Errorf("windows not zero: %+v %+v", s.Last10Rounds, s.ThisYear)
	}
	if s.CourseStats == nil || len(s.CourseStats) != 0 {
		t.Errorf("CourseStats = %v", s.CourseStats)
	}
	if s.MonthlyStats == nil || len(s.MonthlyStats) != 0 {
		t.Errorf("MonthlyStats = %v", s.MonthlyStats)
	}
	if !s.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v", s.UpdatedAt)
	}
}

func TestAggregate_Basics(t *testing.T) {
	rounds := []golf.Round{
		round("a", "2026-10-01", 88),
		round("b", "2026-09-15", 95),
		round("a", "2026-08-20", 82),
		round("c", "2025-12-30", 101),
	}
	s := Aggregate("u1", rounds, now)

	if s.TotalRounds != 4 {
		t.Fatalf("TotalRounds = %d", s.TotalRounds)
	}
	if s.AverageScore != 91.5 {
		t.Errorf("AverageScore = %v, want 91.5", s.AverageScore)
	}
	if s.BestScore != 82 || s.WorstScore != 101 {
		t.Errorf("best/worst = %d/%d", s.BestScore, s.WorstScore)
	}
	if s.CurrentHandicap != 0 {
		t.Errorf("CurrentHandicap = %v", s.CurrentHandicap)
	}
	if s.Last5Rounds.AverageScore != 91.5 || s.Last10Rounds.AverageScore != 91.5 {
		t.Errorf("windows = %v / %v", s.Last5Rounds.AverageScore, s.Last10Rounds.AverageScore)
	}
	if s.Last5Rounds.Improvement != 0 {
		t.Errorf("improvement without a previous window = %v", s.Last5Rounds.Improvement)
	}
	wantDates := []string{"2026-10-01", "2026-09-15", "2026-08-20", "2025-12-30"}
	if fmt.Sprint(s.Last5Rounds.Dates) != fmt.Sprint(wantDates) {
		t.Errorf("dates = %v", s.Last5Rounds.Dates)
	}
	if s.ThisYear.Rounds != 3 || s.ThisYear.AverageScore != 265.0/3 {
		t.Errorf("ThisYear = %+v", s.ThisYear)
	}

	a := s.CourseStats["a"]
	if a.CourseName != "Course a" || a.Rounds != 2 || a.AverageScore != 85 || a.BestScore != 82 {
		t.Errorf("course a = %+v", a)
	}
	if len(s.CourseStats) != 3 {
		t.Errorf("len(CourseStats) = %d", len(s.CourseStats))
	}

	if m := s.MonthlyStats["2026-09"]; m.Rounds != 1 || m.AverageScore != 95 {
		t.Errorf("monthly 2026-09 = %+v", m)
	}
	if len(s.MonthlyStats) != 4 {
		t.Errorf("len(MonthlyStats) = %d", len(s.MonthlyStats))
	}
}

func TestAggregate_RollingWindows(t *testing.T) {
	var rounds []golf.Round
	// most recent first: 80 x5, then 90 x5, then 100 x2
	for i := 0; i < 12; i++ {
		score := 80
		switch {
		case i >= 10:
			score = 100
		case i >= 5:
			score = 90
		}
		date := time.Date(2026, 9, 30, 0, 0, 0, 0, time.Local).AddDate(0, 0, -i).Format(golf.DateLayout)
		rounds = append(rounds, round("a", date, score))
	}
	s := Aggregate("u1", rounds, now)

	if s.Last5Rounds.AverageScore != 80 {
		t.Errorf("last5 avg = %v", s.Last5Rounds.AverageScore)
	}
	if s.Last5Rounds.Improvement != 10 {
		t.Errorf("last5 improvement = %v, want 10", s.Last5Rounds.Improvement)
	}
	if len(s.Last5Rounds.Dates) != 5 || s.Last5Rounds.Dates[0] != "2026-09-30" {
		t.Errorf("last5 dates = %v", s.Last5Rounds.Dates)
	}
	if s.Last10Rounds.AverageScore != 85 {
		t.Errorf("last10 avg = %v", s.Last10Rounds.AverageScore)
	}
	if s.Last10Rounds.Improvement != 15 {
		t.Errorf("last10 improvement = %v, want 15", s.Last10Rounds.Improvement)
	}
}

func TestAggregate_Invariants(t *testing.T) {
	scores := []int{77, 103, 91, 91, 85, 120, 64, 99, 88}
	courses := []string{"a", "b", "c"}
	for n := 1; n <= len(scores); n++ {
		var rounds []golf.Round
		for i := 0; i < n; i++ {
			rounds = append(rounds, round(courses[i%3], fmt.Sprintf("2026-0%d-1%d", 1+i%9, i%10), scores[i]))
		}
		s := Aggregate("u", rounds, now)

		if !(float64(s.BestScore) <= s.AverageScore && s.AverageScore <= float64(s.WorstScore)) {
			t.Errorf("n=%d: best %d avg %v worst %d", n, s.BestScore, s.AverageScore, s.WorstScore)
		}
		sum := 0
		for _, cs := range s.CourseStats {
			sum += cs.Rounds
		}
		if sum != s.TotalRounds {
			t.Errorf("n=%d: course rounds %d != total %d", n, sum, s.TotalRounds)
		}

		again := Aggregate("u", rounds, now)
		if fmt.Sprint(again) != fmt.Sprint(s) {
			t.Errorf("n=%d: aggregation not reproducible", n)
		}
	}
}

func TestAggregate_SkipsUnparseableDates(t *testing.T) {
	s := Aggregate("u", []golf.Round{round("a", "not-a-date", 90)}, now)
	if s.TotalRounds != 1 || s.ThisYear.Rounds != 0 || len(s.MonthlyStats) != 0 {
		t.Errorf("summary = %+v", s)
	}
}

func TestDisplay(t *testing.T) {
	s := Summary{AverageScore: 85.349, Last5Rounds: Window{AverageScore: 90.25}}
	d := Display(s)
	if d["averageScore"] != "85.3" {
		t.Errorf("averageScore = %s", d["averageScore"])
	}
	if d["last5AverageScore"] != "90.3" {
		t.Errorf("last5AverageScore = %s", d["last5AverageScore"])
	}
	if Round1(72.75) != 72.8 {
		t.Errorf("Round1 = %v", Round1(72.75))
	}
}
