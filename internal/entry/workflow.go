// Package entry implements the four-step round entry workflow: basic info,
// participants, scores and confirmation. Each step validates only the fields
// it owns before the workflow moves on.
package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
)

type Step int

const (
	StepBasicInfo Step = iota
	StepParticipants
	StepScoreInput
	StepConfirmation
)

var stepNames = [...]string{"basicInfo", "participants", "scoreInput", "confirmation"}

func (s Step) String() string {
	if s < StepBasicInfo || s > StepConfirmation {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

const (
	MaxParticipants = 4
	DefaultPar      = 4
)

var (
	ErrFirstStep           = errors.New("entry: already at the first step")
	ErrLastStep            = errors.New("entry: already at the last step")
	ErrWrongStep           = errors.New("entry: field belongs to another step")
	ErrNotConfirming       = errors.New("entry: submit is only possible from confirmation")
	ErrSubmitted           = errors.New("entry: round already submitted")
	ErrTooManyParticipants = fmt.Errorf("entry: at most %d participants", MaxParticipants)
	ErrLastParticipant     = errors.New("entry: at least one participant is required")
	ErrParticipantIndex    = errors.New("entry: no participant at that index")
	ErrHoleNumber          = errors.New("entry: hole number must be between 1 and 18")
)

// Basic holds the fields of the first step.
type Basic struct {
	CourseID    string   `json:"courseId" validate:"required"`
	PlayDate    string   `json:"playDate" validate:"required"`
	StartTime   string   `json:"startTime" validate:"required"`
	TeeName     string   `json:"teeName" validate:"required"`
	Weather     string   `json:"weather,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=-20,max=50"`
	WindSpeed   *float64 `json:"windSpeed,omitempty" validate:"omitempty,min=0,max=100"`
	Memo        string   `json:"memo,omitempty" validate:"max=500"`
}

type participantsForm struct {
	Participants []golf.Participant `json:"participants" validate:"min=1,max=4,dive"`
}

type scoresForm struct {
	Scores []golf.HoleScore `json:"scores" validate:"len=18,dive"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(apperr.JSONTagName)
	return v
}()

// RoundSink persists a finished round. Creating the same round id twice must
// not produce a second record.
type RoundSink interface {
	CreateRound(ctx context.Context, r *golf.Round) error
}

type Workflow struct {
	step         Step
	basic        Basic
	courseName   string
	participants []golf.Participant
	scores       [golf.HoleCount]golf.HoleScore
	errs         map[string]string

	roundID   string
	submitErr error
	submitted *golf.Round

	now func() time.Time
}

// New returns an empty workflow on the first step with no participants and
// 18 blank holes.
func New() *Workflow {
	w := &Workflow{now: time.Now}
	for i := range w.scores {
		w.scores[i] = golf.HoleScore{HoleNumber: i + 1, Par: DefaultPar}
	}
	return w
}

// Draft describes the values a fresh entry form starts with.
type Draft struct {
	PlayDate  string
	StartTime string
	TeeName   string
	Player    golf.Participant
	Strokes   int
}

func NewDraft(d Draft) *Workflow {
	w := New()
	w.basic.PlayDate = d.PlayDate
	w.basic.StartTime = d.StartTime
	w.basic.TeeName = d.TeeName
	if d.Player.Name != "" {
		w.participants = append(w.participants, d.Player)
	}
	if d.Strokes > 0 {
		for i := range w.scores {
			w.scores[i].Strokes = d.Strokes
		}
	}
	return w
}

func (w *Workflow) Step() Step { return w.step }

func (w *Workflow) Done() bool { return w.submitted != nil }

// Errors returns the field errors from the last failed Advance.
func (w *Workflow) Errors() map[string]string {
	out := make(map[string]string, len(w.errs))
	for k, v := range w.errs {
		out[k] = v
	}
	return out
}

// SubmitError is the failure of the last Submit, if any.
func (w *Workflow) SubmitError() error { return w.submitErr }

func (w *Workflow) Basic() Basic { return w.basic }

func (w *Workflow) CourseName() string { return w.courseName }

func (w *Workflow) Participants() []golf.Participant {
	return append([]golf.Participant(nil), w.participants...)
}

func (w *Workflow) Scores() []golf.HoleScore {
	return append([]golf.HoleScore(nil), w.scores[:]...)
}

// Totals is recomputed from the current strokes on every call.
func (w *Workflow) Totals() golf.NineTotals {
	return golf.Totals(w.scores[:])
}

func (w *Workflow) editable(owner Step) error {
	if w.Done() {
		return ErrSubmitted
	}
	if w.step != owner {
		return ErrWrongStep
	}
	return nil
}

// SetBasic replaces the basic info. The course id is kept when b leaves it
// empty. Switching to another course id resets the pars until SelectCourse
// loads that course.
func (w *Workflow) SetBasic(b Basic) error {
	if err := w.editable(StepBasicInfo); err != nil {
		return err
	}
	if b.CourseID == "" {
		b.CourseID = w.basic.CourseID
	}
	if b.CourseID != w.basic.CourseID {
		w.courseName = ""
		w.applyPars(golf.Course{})
	}
	w.basic = b
	return nil
}

// SelectCourse sets the course and takes the hole pars from it. Holes the
// course has no data for are played as par 4.
func (w *Workflow) SelectCourse(c golf.Course) error {
	if err := w.editable(StepBasicInfo); err != nil {
		return err
	}
	w.basic.CourseID = c.ID
	w.courseName = c.Name
	w.applyPars(c)
	return nil
}

func (w *Workflow) applyPars(c golf.Course) {
	for i := range w.scores {
		par := c.Par(i + 1)
		if par == 0 {
			par = DefaultPar
		}
		w.scores[i].Par = par
	}
}

func (w *Workflow) AddParticipant(p golf.Participant) error {
	if err := w.editable(StepParticipants); err != nil {
		return err
	}
	if len(w.participants) >= MaxParticipants {
		return ErrTooManyParticipants
	}
	if p.Type == "" {
		p.Type = golf.Guest
	}
	w.participants = append(w.participants, p)
	return nil
}

func (w *Workflow) UpdateParticipant(i int, p golf.Participant) error {
	if err := w.editable(StepParticipants); err != nil {
		return err
	}
	if i < 0 || i >= len(w.participants) {
		return ErrParticipantIndex
	}
	if p.Type == "" {
		p.Type = golf.Guest
	}
	w.participants[i] = p
	return nil
}

func (w *Workflow) RemoveParticipant(i int) error {
	if err := w.editable(StepParticipants); err != nil {
		return err
	}
	if i < 0 || i >= len(w.participants) {
		return ErrParticipantIndex
	}
	if len(w.participants) <= 1 {
		return ErrLastParticipant
	}
	w.participants = append(w.participants[:i], w.participants[i+1:]...)
	return nil
}

// SetScore replaces the entry for one hole. Hole number and par always come
// from the workflow, not from s.
func (w *Workflow) SetScore(hole int, s golf.HoleScore) error {
	if err := w.editable(StepScoreInput); err != nil {
		return err
	}
	if hole < 1 || hole > golf.HoleCount {
		return ErrHoleNumber
	}
	cur := &w.scores[hole-1]
	s.HoleNumber, s.Par = cur.HoleNumber, cur.Par
	*cur = s
	return nil
}

func (w *Workflow) SetStrokes(hole, strokes int) error {
	if err := w.editable(StepScoreInput); err != nil {
		return err
	}
	if hole < 1 || hole > golf.HoleCount {
		return ErrHoleNumber
	}
	w.scores[hole-1].Strokes = strokes
	return nil
}

// Advance validates the current step and moves to the next one. On failure
// the step is unchanged and the error carries one message per field.
func (w *Workflow) Advance() error {
	if w.Done() {
		return ErrSubmitted
	}
	if w.step == StepConfirmation {
		return ErrLastStep
	}
	if err := w.validateStep(w.step); err != nil {
		w.errs = err.Fields
		return err
	}
	w.errs = nil
	w.step++
	return nil
}

// Retreat goes back one step without validating or discarding anything.
func (w *Workflow) Retreat() error {
	if w.Done() {
		return ErrSubmitted
	}
	if w.step == StepBasicInfo {
		return ErrFirstStep
	}
	w.errs = nil
	w.step--
	return nil
}

func (w *Workflow) validateStep(s Step) *apperr.Error {
	var err error
	switch s {
	case StepBasicInfo:
		err = validate.Struct(w.basic)
	case StepParticipants:
		err = validate.Struct(participantsForm{Participants: w.participants})
	case StepScoreInput:
		err = validate.Struct(scoresForm{Scores: w.scores[:]})
	}
	if err == nil {
		return nil
	}
	return apperr.FromValidator(err)
}

// Validate checks every step at once, as a whole-form submission would.
func (w *Workflow) Validate() error {
	fields := map[string]string{}
	for s := StepBasicInfo; s < StepConfirmation; s++ {
		if err := w.validateStep(s); err != nil {
			for k, v := range err.Fields {
				fields[k] = v
			}
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// Build assembles the round the workflow would submit. The round id is fixed
// the first time Build is called so that a retried submit creates the same round.
func (w *Workflow) Build(userID string) *golf.Round {
	if w.roundID == "" {
		w.roundID = uuid.NewString()
	}
	now := w.now()

	scores := w.Scores()
	for i := range scores {
		if scores[i].Par == 3 {
			scores[i].FairwayHit = nil
		}
	}
	name := w.courseName
	if name == "" {
		name = w.basic.CourseID
	}
	return &golf.Round{
		ID:           w.roundID,
		UserID:       userID,
		CourseID:     w.basic.CourseID,
		CourseName:   name,
		PlayDate:     w.basic.PlayDate,
		StartTime:    w.basic.StartTime,
		Weather:      w.basic.Weather,
		Temperature:  w.basic.Temperature,
		WindSpeed:    w.basic.WindSpeed,
		TeeName:      w.basic.TeeName,
		TotalScore:   golf.TotalStrokes(scores),
		TotalPar:     golf.TotalPar(scores),
		Scores:       scores,
		Participants: w.Participants(),
		Memo:         w.basic.Memo,
		IsCompleted:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Submit creates the round through sink. It is only allowed from the
// confirmation step. A failed submit leaves the workflow as it was and can be
// repeated; a successful one ends the workflow.
func (w *Workflow) Submit(ctx context.Context, sink RoundSink, userID string) (*golf.Round, error) {
	r, err := w.prepare(userID)
	if err != nil {
		return nil, err
	}
	return w.finish(r, sink.CreateRound(ctx, r))
}

func (w *Workflow) prepare(userID string) (*golf.Round, error) {
	if w.Done() {
		return nil, ErrSubmitted
	}
	if w.step != StepConfirmation {
		return nil, ErrNotConfirming
	}
	if err := w.Validate(); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			w.errs = ae.Fields
		}
		return nil, err
	}
	w.errs = nil
	return w.Build(userID), nil
}

func (w *Workflow) finish(r *golf.Round, err error) (*golf.Round, error) {
	if err != nil {
		w.submitErr = err
		return nil, err
	}
	w.submitErr = nil
	w.submitted = r
	return r, nil
}

// Form is a whole round submitted at once rather than step by step.
type Form struct {
	Basic
	CourseName   string             `json:"courseName,omitempty"`
	Participants []golf.Participant `json:"participants"`
	Scores       []golf.HoleScore   `json:"scores"`
}

// Workflow loads the form into a workflow positioned on the confirmation
// step, ready for Validate and Submit. Scores are placed by hole number and
// their pars always come from course, never from the form.
func (f Form) Workflow(course golf.Course) *Workflow {
	w := New()
	w.basic = f.Basic
	w.courseName = f.CourseName
	for _, p := range f.Participants {
		if p.Type == "" {
			p.Type = golf.Guest
		}
		w.participants = append(w.participants, p)
	}
	for _, s := range f.Scores {
		if s.HoleNumber < 1 || s.HoleNumber > golf.HoleCount {
			continue
		}
		w.scores[s.HoleNumber-1] = s
	}
	w.applyPars(course)
	if course.Name != "" {
		w.courseName = course.Name
	}
	w.step = StepConfirmation
	return w
}

// Submitted is the round created by a successful Submit.
func (w *Workflow) Submitted() *golf.Round { return w.submitted }
