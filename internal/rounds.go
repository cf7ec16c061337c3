package internal

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/entry"
	"golf-tracker/internal/events"
	"golf-tracker/internal/golf"
	"golf-tracker/internal/obs"
)

// roundSink is where finished rounds go, from either the whole-form POST or
// a step-by-step entry session.
type roundSink struct{ d *Deps }

func (s roundSink) CreateRound(ctx context.Context, r *golf.Round) (err error) {
	ctx, span := obs.Start(ctx, "round.create", attribute.String("round.id", r.ID))
	defer func() { obs.End(span, err) }()

	if err := s.d.Rounds.CreateRound(ctx, r); err != nil {
		return err
	}
	s.d.Audit.Log(ctx, r.UserID, "create_round", "round_id="+r.ID)
	publish(ctx, s.d, events.RKRoundCreated, r)
	return nil
}

func publish(ctx context.Context, d *Deps, key string, r *golf.Round) {
	if err := d.Events.PublishJSON(ctx, key, events.NewRoundEvent(r, d.now())); err != nil {
		log.Printf("[events] publish %s round=%s: %v", key, r.ID, err)
	}
}

// resolveCourse loads the course the form names, reporting an unknown course
// as a field error. A form without a course id gets the zero course and fails
// validation later.
func resolveCourse(ctx context.Context, d *Deps, f *entry.Form) (golf.Course, error) {
	if f.CourseID == "" {
		return golf.Course{}, nil
	}
	course, err := d.Courses.Course(ctx, f.CourseID)
	if apperr.Classify(err) == apperr.KindNotFound {
		return golf.Course{}, apperr.Validation(map[string]string{"courseId": "course not found"})
	}
	if err != nil {
		return golf.Course{}, err
	}
	return course, nil
}

// ownedRound loads a round and checks that the caller owns it.
func ownedRound(c *gin.Context, d *Deps) (golf.Round, error) {
	r, err := d.Rounds.Round(c.Request.Context(), c.Param("id"))
	if err != nil {
		return golf.Round{}, err
	}
	if r.UserID != uid(c) {
		return golf.Round{}, apperr.ErrPermission
	}
	return r, nil
}

// ------------------- Rounds -------------------

type roundQuery struct {
	From     string `json:"from" form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `json:"to" form:"to" binding:"omitempty,datetime=2006-01-02"`
	CourseID string `json:"courseId" form:"courseId"`
	Page     int    `json:"page" form:"page" binding:"omitempty,min=1"`
	Limit    int    `json:"limit" form:"limit" binding:"omitempty,min=1,max=100"`
}

// GET /api/rounds?from=&to=&courseId=&page=&limit=
func ListRounds(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q roundQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		if q.Page == 0 {
			q.Page = 1
		}
		if q.Limit == 0 {
			q.Limit = 10
		}

		items, total, err := d.Rounds.ListRounds(c.Request.Context(), RoundFilter{
			UserID:   uid(c),
			From:     q.From,
			To:       q.To,
			CourseID: q.CourseID,
			Page:     q.Page,
			Limit:    q.Limit,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, RoundList{Items: items, Pagination: NewPagination(q.Page, q.Limit, total)})
	}
}

// GET /api/rounds/recent?count=5
func RecentRounds(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q struct {
			Count int `json:"count" form:"count" binding:"omitempty,min=1,max=100"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		if q.Count == 0 {
			q.Count = 5
		}
		items, _, err := d.Rounds.ListRounds(c.Request.Context(), RoundFilter{UserID: uid(c), Page: 1, Limit: q.Count})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, items)
	}
}

func CreateRound(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f entry.Form
		if err := c.ShouldBindJSON(&f); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		ctx := c.Request.Context()
		course, err := resolveCourse(ctx, d, &f)
		if err != nil {
			fail(c, err)
			return
		}

		r, err := f.Workflow(course).Submit(ctx, roundSink{d}, uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(201, RoundDetail{Round: *r, Scorecard: golf.NewScorecard(*r)})
	}
}

func GetRound(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := ownedRound(c, d)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, RoundDetail{Round: r, Scorecard: golf.NewScorecard(r)})
	}
}

// PUT /api/rounds/:id replaces the whole round; the last write wins.
func UpdateRound(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := ownedRound(c, d)
		if err != nil {
			fail(c, err)
			return
		}
		var f entry.Form
		if err := c.ShouldBindJSON(&f); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		ctx := c.Request.Context()
		course, err := resolveCourse(ctx, d, &f)
		if err != nil {
			fail(c, err)
			return
		}

		w := f.Workflow(course)
		if err := w.Validate(); err != nil {
			fail(c, err)
			return
		}
		r := w.Build(existing.UserID)
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
		r.UpdatedAt = d.now()

		if err := d.Rounds.UpdateRound(ctx, r); err != nil {
			fail(c, err)
			return
		}
		d.Audit.Log(ctx, r.UserID, "update_round", "round_id="+r.ID)
		publish(ctx, d, events.RKRoundUpdated, r)
		c.JSON(200, RoundDetail{Round: *r, Scorecard: golf.NewScorecard(*r)})
	}
}

func DeleteRound(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := ownedRound(c, d)
		if err != nil {
			fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := d.Rounds.DeleteRound(ctx, r.ID); err != nil {
			fail(c, err)
			return
		}
		d.Audit.Log(ctx, r.UserID, "delete_round", "round_id="+r.ID)
		publish(ctx, d, events.RKRoundDeleted, &r)
		c.JSON(200, gin.H{"ok": true})
	}
}
