package internal

import (
	"github.com/gin-gonic/gin"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/entry"
	"golf-tracker/internal/golf"
)

const (
	defaultStartTime = "08:00"
	defaultStrokes   = 4
)

// failEntry is fail plus the session state, so the form can show field
// errors and notices next to the inputs.
func failEntry(c *gin.Context, err error, v entry.View) {
	status, body := errorBody(c, entryError(err))
	body["entry"] = v
	c.AbortWithStatusJSON(status, body)
}

func entrySession(c *gin.Context, d *Deps) (*entry.Session, bool) {
	s, err := d.Entries.Get(c.Param("id"), uid(c))
	if err != nil {
		fail(c, entryError(err))
		return nil, false
	}
	return s, true
}

func entryDo(c *gin.Context, d *Deps, fn func(w *entry.Workflow) error) {
	s, ok := entrySession(c, d)
	if !ok {
		return
	}
	v, err := s.Do(fn)
	if err != nil {
		failEntry(c, err, v)
		return
	}
	c.JSON(200, v)
}

// POST /api/entries opens a session seeded with today's date, the usual start
// time, the user's default tee and the user as the first participant.
func OpenEntry(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID string `json:"courseId"`
		}
		_ = c.ShouldBindJSON(&req)

		ctx := c.Request.Context()
		u, err := d.Users.UserByID(ctx, uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		handicap := u.Handicap
		w := entry.NewDraft(entry.Draft{
			PlayDate:  today(d.now()),
			StartTime: defaultStartTime,
			TeeName:   u.Preferences.DefaultTee,
			Player:    golf.Participant{UserID: u.ID, Name: u.Name, Type: golf.Registered, Handicap: &handicap},
			Strokes:   defaultStrokes,
		})
		if req.CourseID != "" {
			course, err := d.Courses.Course(ctx, req.CourseID)
			if err != nil {
				fail(c, err)
				return
			}
			if err := w.SelectCourse(course); err != nil {
				fail(c, entryError(err))
				return
			}
		}

		s := d.Entries.Open(u.ID, w)
		d.Audit.Log(ctx, u.ID, "open_entry", "entry_id="+s.ID)
		c.JSON(201, s.View())
	}
}

func GetEntry(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := entrySession(c, d)
		if !ok {
			return
		}
		c.JSON(200, s.View())
	}
}

func DiscardEntry(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Entries.Discard(c.Param("id"), uid(c)); err != nil {
			fail(c, entryError(err))
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// PUT /api/entries/:id/basic; a changed course id also loads that course's pars.
func EditEntryBasic(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var b entry.Basic
		if err := c.ShouldBindJSON(&b); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		s, ok := entrySession(c, d)
		if !ok {
			return
		}

		var course *golf.Course
		if b.CourseID != "" && b.CourseID != s.View().Basic.CourseID {
			found, err := d.Courses.Course(c.Request.Context(), b.CourseID)
			if apperr.Classify(err) == apperr.KindNotFound {
				fail(c, apperr.Validation(map[string]string{"courseId": "course not found"}))
				return
			}
			if err != nil {
				fail(c, err)
				return
			}
			course = &found
		}

		v, err := s.Do(func(w *entry.Workflow) error {
			if err := w.SetBasic(b); err != nil {
				return err
			}
			if course != nil {
				return w.SelectCourse(*course)
			}
			return nil
		})
		if err != nil {
			failEntry(c, err, v)
			return
		}
		c.JSON(200, v)
	}
}

func AddEntryParticipant(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p golf.Participant
		if err := c.ShouldBindJSON(&p); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		entryDo(c, d, func(w *entry.Workflow) error { return w.AddParticipant(p) })
	}
}

func UpdateEntryParticipant(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		i, ok := intParam(c, "index")
		if !ok {
			fail(c, apperr.Validation(map[string]string{"index": "index must be a number"}))
			return
		}
		var p golf.Participant
		if err := c.ShouldBindJSON(&p); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		entryDo(c, d, func(w *entry.Workflow) error { return w.UpdateParticipant(i, p) })
	}
}

func RemoveEntryParticipant(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		i, ok := intParam(c, "index")
		if !ok {
			fail(c, apperr.Validation(map[string]string{"index": "index must be a number"}))
			return
		}
		entryDo(c, d, func(w *entry.Workflow) error { return w.RemoveParticipant(i) })
	}
}

// PUT /api/entries/:id/scores/:hole
func EditEntryScore(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		hole, ok := intParam(c, "hole")
		if !ok {
			fail(c, apperr.Validation(map[string]string{"hole": "hole must be a number"}))
			return
		}
		var hs golf.HoleScore
		if err := c.ShouldBindJSON(&hs); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		entryDo(c, d, func(w *entry.Workflow) error { return w.SetScore(hole, hs) })
	}
}

func AdvanceEntry(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryDo(c, d, (*entry.Workflow).Advance)
	}
}

func RetreatEntry(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryDo(c, d, (*entry.Workflow).Retreat)
	}
}

func SubmitEntry(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := entrySession(c, d)
		if !ok {
			return
		}
		r, err := s.Submit(c.Request.Context(), roundSink{d})
		if err != nil {
			failEntry(c, err, s.View())
			return
		}
		c.JSON(201, gin.H{
			"entry": s.View(),
			"round": RoundDetail{Round: *r, Scorecard: golf.NewScorecard(*r)},
		})
	}
}

func HideEntryNotice(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := entrySession(c, d)
		if !ok {
			return
		}
		s.HideNotice()
		c.JSON(200, s.View())
	}
}
