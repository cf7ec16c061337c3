package golf

import "strconv"

// ScoreClass buckets a hole result relative to par.
type ScoreClass string

const (
	EagleOrBetter      ScoreClass = "eagle-or-better"
	Birdie             ScoreClass = "birdie"
	ParScore           ScoreClass = "par"
	Bogey              ScoreClass = "bogey"
	DoubleBogeyOrWorse ScoreClass = "double-bogey-or-worse"
)

type ScoreDiff struct {
	Value int        `json:"value"`
	Class ScoreClass `json:"class"`
	Label string     `json:"label"`
	Color string     `json:"color"`
}

func Diff(strokes, par int) ScoreDiff {
	d := strokes - par
	switch {
	case d <= -2:
		return ScoreDiff{Value: d, Class: EagleOrBetter, Label: "E", Color: "#4caf50"}
	case d == -1:
		return ScoreDiff{Value: d, Class: Birdie, Label: "B", Color: "#2196f3"}
	case d == 0:
		return ScoreDiff{Value: d, Class: ParScore, Label: "P", Color: "#000000"}
	case d == 1:
		return ScoreDiff{Value: d, Class: Bogey, Label: "+1", Color: "#ff9800"}
	default:
		return ScoreDiff{Value: d, Class: DoubleBogeyOrWorse, Label: "+" + strconv.Itoa(d), Color: "#f44336"}
	}
}

type NineTotals struct {
	Front int `json:"front"`
	Back  int `json:"back"`
	Total int `json:"total"`
}

// Totals sums strokes per nine. Holes are identified by HoleNumber, not position.
func Totals(scores []HoleScore) NineTotals {
	var t NineTotals
	for _, s := range scores {
		switch {
		case s.HoleNumber >= 1 && s.HoleNumber <= 9:
			t.Front += s.Strokes
		case s.HoleNumber >= 10 && s.HoleNumber <= HoleCount:
			t.Back += s.Strokes
		}
	}
	t.Total = t.Front + t.Back
	return t
}

func FrontNine(scores []HoleScore) int { return Totals(scores).Front }

func BackNine(scores []HoleScore) int { return Totals(scores).Back }

func TotalStrokes(scores []HoleScore) int {
	n := 0
	for _, s := range scores {
		n += s.Strokes
	}
	return n
}

func TotalPar(scores []HoleScore) int {
	n := 0
	for _, s := range scores {
		n += s.Par
	}
	return n
}

type ScorecardHole struct {
	HoleScore
	Diff ScoreDiff `json:"diff"`
}

type Scorecard struct {
	Holes    []ScorecardHole `json:"holes"`
	Strokes  NineTotals      `json:"strokes"`
	ToPar    int             `json:"toPar"`
	ParFront int             `json:"parFront"`
	ParBack  int             `json:"parBack"`
}

// NewScorecard annotates every hole of a round for detail and list views.
func NewScorecard(r Round) Scorecard {
	card := Scorecard{
		Holes:   make([]ScorecardHole, 0, len(r.Scores)),
		Strokes: Totals(r.Scores),
		ToPar:   r.TotalScore - r.TotalPar,
	}
	for _, s := range r.Scores {
		card.Holes = append(card.Holes, ScorecardHole{HoleScore: s, Diff: Diff(s.Strokes, s.Par)})
		if s.HoleNumber <= 9 {
			card.ParFront += s.Par
		} else {
			card.ParBack += s.Par
		}
	}
	return card
}
