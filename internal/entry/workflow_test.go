package entry

import (
	"context"
	"errors"
	"testing"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
)

var testPars = []int{4, 5, 3, 4, 4, 5, 3, 4, 4, 4, 5, 3, 4, 4, 5, 3, 4, 4}

func testCourse() golf.Course {
	c := golf.Course{ID: "c1", Name: "Test Golf Club"}
	for i, p := range testPars {
		c.Holes = append(c.Holes, golf.CourseHole{CourseID: c.ID, HoleNumber: i + 1, Par: p})
	}
	return c
}

type fakeSink struct {
	fail  []error
	calls []*golf.Round
}

func (s *fakeSink) CreateRound(_ context.Context, r *golf.Round) error {
	s.calls = append(s.calls, r)
	if len(s.fail) > 0 {
		err := s.fail[0]
		s.fail = s.fail[1:]
		return err
	}
	return nil
}

// confirming walks a workflow to the confirmation step, scoring par on every hole.
func confirming(t *testing.T) *Workflow {
	t.Helper()
	w := New()
	if err := w.SelectCourse(testCourse()); err != nil {
		t.Fatal(err)
	}
	b := w.Basic()
	b.PlayDate, b.StartTime, b.TeeName = "2026-05-03", "08:00", "Regular"
	if err := w.SetBasic(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Advance(); err != nil {
		t.Fatalf("basic info: %v", err)
	}
	if err := w.AddParticipant(golf.Participant{Name: "Aoi", Type: golf.Registered, UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Advance(); err != nil {
		t.Fatalf("participants: %v", err)
	}
	for i, p := range testPars {
		if err := w.SetStrokes(i+1, p); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Advance(); err != nil {
		t.Fatalf("scores: %v", err)
	}
	if w.Step() != StepConfirmation {
		t.Fatalf("step = %s", w.Step())
	}
	return w
}

func TestBasicInfoReportsEachMissingField(t *testing.T) {
	w := New()
	err := w.Advance()
	if apperr.Classify(err) != apperr.KindValidation {
		t.Fatalf("Advance err = %v", err)
	}
	if w.Step() != StepBasicInfo {
		t.Fatalf("step moved to %s", w.Step())
	}
	errs := w.Errors()
	if len(errs) != 4 {
		t.Fatalf("errors = %v", errs)
	}
	for _, f := range []string{"courseId", "playDate", "startTime", "teeName"} {
		if errs[f] == "" {
			t.Errorf("missing error for %s", f)
		}
	}
}

func TestBasicInfoRanges(t *testing.T) {
	w := New()
	hot, gale := 51.0, 101.0
	w.SetBasic(Basic{CourseID: "c1", PlayDate: "2026-05-03", StartTime: "08:00", TeeName: "Back", Temperature: &hot, WindSpeed: &gale})
	if err := w.Advance(); err == nil {
		t.Fatal("expected range errors")
	}
	errs := w.Errors()
	if errs["temperature"] == "" || errs["windSpeed"] == "" || len(errs) != 2 {
		t.Fatalf("errors = %v", errs)
	}
}

func TestParticipantsStepNeedsOne(t *testing.T) {
	w := New()
	w.SetBasic(Basic{CourseID: "c1", PlayDate: "2026-05-03", StartTime: "08:00", TeeName: "Regular"})
	if err := w.Advance(); err != nil {
		t.Fatal(err)
	}

	if err := w.Advance(); err == nil {
		t.Fatal("zero participants should not advance")
	}
	if w.Errors()["participants"] == "" {
		t.Fatalf("errors = %v", w.Errors())
	}

	w.AddParticipant(golf.Participant{Name: "Ren"})
	if err := w.Advance(); err != nil {
		t.Fatalf("one participant: %v", err)
	}
	if w.Step() != StepScoreInput {
		t.Fatalf("step = %s", w.Step())
	}
	if len(w.Errors()) != 0 {
		t.Fatalf("errors not cleared: %v", w.Errors())
	}
}

func TestParticipantLimits(t *testing.T) {
	w := New()
	w.SetBasic(Basic{CourseID: "c1", PlayDate: "2026-05-03", StartTime: "08:00", TeeName: "Regular"})
	w.Advance()

	for i := 0; i < MaxParticipants; i++ {
		if err := w.AddParticipant(golf.Participant{Name: "p"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.AddParticipant(golf.Participant{Name: "fifth"}); !errors.Is(err, ErrTooManyParticipants) {
		t.Fatalf("fifth participant err = %v", err)
	}
	if got := w.Participants()[0].Type; got != golf.Guest {
		t.Errorf("default type = %q", got)
	}
	for i := 0; i < MaxParticipants-1; i++ {
		if err := w.RemoveParticipant(0); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.RemoveParticipant(0); !errors.Is(err, ErrLastParticipant) {
		t.Fatalf("removing the last participant err = %v", err)
	}
	if err := w.UpdateParticipant(3, golf.Participant{Name: "x"}); !errors.Is(err, ErrParticipantIndex) {
		t.Fatalf("update out of range err = %v", err)
	}

	bad := 60.0
	w.UpdateParticipant(0, golf.Participant{Name: "", Type: golf.Guest, Handicap: &bad})
	w.Advance()
	errs := w.Errors()
	if errs["participants[0].name"] == "" || errs["participants[0].handicap"] == "" {
		t.Fatalf("errors = %v", errs)
	}
}

func TestEditsBelongToTheirStep(t *testing.T) {
	w := New()
	if err := w.AddParticipant(golf.Participant{Name: "early"}); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("AddParticipant on basic info err = %v", err)
	}
	if err := w.SetStrokes(1, 4); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("SetStrokes on basic info err = %v", err)
	}
	if err := w.Retreat(); !errors.Is(err, ErrFirstStep) {
		t.Fatalf("Retreat from first step err = %v", err)
	}
}

func TestScoreTotalsFollowEdits(t *testing.T) {
	w := confirming(t)
	w.Retreat()
	if w.Step() != StepScoreInput {
		t.Fatalf("step = %s", w.Step())
	}
	if got := w.Totals(); got.Front != 36 || got.Back != 36 || got.Total != 72 {
		t.Fatalf("totals = %+v", got)
	}
	w.SetStrokes(1, 7)
	w.SetStrokes(18, 2)
	if got := w.Totals(); got.Front != 39 || got.Back != 34 || got.Total != 73 {
		t.Fatalf("totals after edit = %+v", got)
	}
	if err := w.SetStrokes(19, 4); !errors.Is(err, ErrHoleNumber) {
		t.Fatalf("hole 19 err = %v", err)
	}

	w.SetStrokes(5, 0)
	if err := w.Advance(); err == nil {
		t.Fatal("zero strokes should not advance")
	}
	if w.Errors()["scores[4].strokes"] == "" {
		t.Fatalf("errors = %v", w.Errors())
	}
}

func TestSelectCourseDefaultsMissingPars(t *testing.T) {
	w := New()
	c := golf.Course{ID: "short", Name: "Nine", Holes: []golf.CourseHole{{HoleNumber: 1, Par: 3}}}
	w.SelectCourse(c)
	s := w.Scores()
	if s[0].Par != 3 || s[1].Par != DefaultPar || s[17].Par != DefaultPar {
		t.Fatalf("pars = %d %d %d", s[0].Par, s[1].Par, s[17].Par)
	}
	if w.Basic().CourseID != "short" || w.CourseName() != "Nine" {
		t.Fatalf("course = %q %q", w.Basic().CourseID, w.CourseName())
	}
}

func TestSetBasicKeepsSelectedCourse(t *testing.T) {
	w := New()
	w.SelectCourse(testCourse())
	if err := w.SetBasic(Basic{PlayDate: "2026-05-03", StartTime: "08:00", TeeName: "Regular"}); err != nil {
		t.Fatal(err)
	}
	if w.Basic().CourseID != "c1" || w.CourseName() != "Test Golf Club" {
		t.Fatalf("course = %q %q", w.Basic().CourseID, w.CourseName())
	}
	if p := w.Scores()[1].Par; p != 5 {
		t.Fatalf("hole 2 par = %d", p)
	}
}

func TestSetBasicOtherCourseResetsPars(t *testing.T) {
	w := New()
	w.SelectCourse(testCourse())
	if err := w.SetBasic(Basic{CourseID: "c2", PlayDate: "2026-05-03", StartTime: "08:00", TeeName: "Regular"}); err != nil {
		t.Fatal(err)
	}
	if w.Basic().CourseID != "c2" || w.CourseName() != "" {
		t.Fatalf("course = %q %q", w.Basic().CourseID, w.CourseName())
	}
	for _, s := range w.Scores() {
		if s.Par != DefaultPar {
			t.Fatalf("hole %d par = %d", s.HoleNumber, s.Par)
		}
	}
}

func TestFormParsComeFromCourse(t *testing.T) {
	f := Form{
		Basic:        Basic{CourseID: "c1", PlayDate: "2026-05-03", StartTime: "08:00", TeeName: "Regular"},
		Participants: []golf.Participant{{Name: "Aoi", Type: golf.Registered, UserID: "u1"}},
	}
	for i := 1; i <= golf.HoleCount; i++ {
		f.Scores = append(f.Scores, golf.HoleScore{HoleNumber: i, Par: 5, Strokes: 4})
	}

	r, err := f.Workflow(testCourse()).Submit(context.Background(), &fakeSink{}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalPar != 72 || r.CourseName != "Test Golf Club" {
		t.Fatalf("round = %d par, course %q", r.TotalPar, r.CourseName)
	}
	for i, s := range r.Scores {
		if s.Par != testPars[i] {
			t.Fatalf("hole %d par = %d, want %d", i+1, s.Par, testPars[i])
		}
	}
}

func TestRetreatKeepsEverything(t *testing.T) {
	w := confirming(t)
	for w.Step() != StepBasicInfo {
		if err := w.Retreat(); err != nil {
			t.Fatal(err)
		}
	}
	if len(w.Participants()) != 1 || w.Participants()[0].Name != "Aoi" {
		t.Fatalf("participants = %+v", w.Participants())
	}
	if w.Basic().TeeName != "Regular" || w.Totals().Total != 72 {
		t.Fatal("retreat lost data")
	}
	for i := 0; i < 3; i++ {
		if err := w.Advance(); err != nil {
			t.Fatalf("re-advance %d: %v", i, err)
		}
	}
	if err := w.Advance(); !errors.Is(err, ErrLastStep) {
		t.Fatalf("advance past confirmation err = %v", err)
	}
}

func TestSubmit(t *testing.T) {
	w := confirming(t)
	w.Retreat()
	yes := true
	w.SetScore(3, golf.HoleScore{Strokes: 3, FairwayHit: &yes, GreenInRegulation: &yes})
	w.Advance()

	sink := &fakeSink{}
	r, err := w.Submit(context.Background(), sink, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.calls) != 1 {
		t.Fatalf("sink calls = %d", len(sink.calls))
	}
	if r.TotalScore != 72 || r.TotalPar != 72 || !r.IsCompleted {
		t.Fatalf("round = %d/%d completed=%v", r.TotalScore, r.TotalPar, r.IsCompleted)
	}
	if r.UserID != "u1" || r.CourseName != "Test Golf Club" || len(r.Scores) != golf.HoleCount {
		t.Fatalf("round = %+v", r)
	}
	if r.Scores[2].FairwayHit != nil || r.Scores[2].GreenInRegulation == nil {
		t.Fatal("fairway hit should be dropped on a par 3")
	}
	for _, h := range golf.NewScorecard(*r).Holes {
		if h.Diff.Label != "P" {
			t.Fatalf("hole %d label = %q", h.HoleNumber, h.Diff.Label)
		}
	}

	if _, err := w.Submit(context.Background(), sink, "u1"); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("second submit err = %v", err)
	}
	if err := w.Retreat(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("retreat after submit err = %v", err)
	}
}

func TestSubmitOnlyFromConfirmation(t *testing.T) {
	w := New()
	if _, err := w.Submit(context.Background(), &fakeSink{}, "u1"); !errors.Is(err, ErrNotConfirming) {
		t.Fatalf("err = %v", err)
	}
}

func TestFailedSubmitCanBeRepeated(t *testing.T) {
	w := confirming(t)
	sink := &fakeSink{fail: []error{apperr.ErrUnavailable}}

	if _, err := w.Submit(context.Background(), sink, "u1"); !errors.Is(err, apperr.ErrUnavailable) {
		t.Fatalf("first submit err = %v", err)
	}
	if w.Done() || w.Step() != StepConfirmation {
		t.Fatal("failed submit must leave the workflow in confirmation")
	}
	if !errors.Is(w.SubmitError(), apperr.ErrUnavailable) {
		t.Fatalf("SubmitError = %v", w.SubmitError())
	}

	r, err := w.Submit(context.Background(), sink, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if sink.calls[0].ID != r.ID {
		t.Fatalf("retry used a new round id: %s != %s", sink.calls[0].ID, r.ID)
	}
	if w.SubmitError() != nil {
		t.Fatal("SubmitError should clear on success")
	}
}

func TestNewDraft(t *testing.T) {
	w := NewDraft(Draft{
		PlayDate:  "2026-10-18",
		StartTime: "08:00",
		TeeName:   "Regular",
		Player:    golf.Participant{UserID: "u1", Name: "Aoi", Type: golf.Registered},
		Strokes:   4,
	})
	if w.Step() != StepBasicInfo || w.Basic().StartTime != "08:00" {
		t.Fatalf("draft basic = %+v", w.Basic())
	}
	if len(w.Participants()) != 1 || w.Totals().Total != 72 {
		t.Fatalf("draft participants=%d total=%d", len(w.Participants()), w.Totals().Total)
	}
}
