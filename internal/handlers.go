package internal

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
	"golf-tracker/internal/stats"
)

// ------------------- Profile -------------------

func Me(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := d.Users.UserByID(c.Request.Context(), uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, u)
	}
}

type profileRequest struct {
	Name        string           `json:"name" validate:"required,max=50"`
	Handicap    *float64         `json:"handicap" validate:"omitempty,min=-10,max=54"`
	Preferences golf.Preferences `json:"preferences"`
}

func UpdateMe(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}
		if err := validate.Struct(req); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}

		ctx := c.Request.Context()
		u, err := d.Users.UserByID(ctx, uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		u.Name = strings.TrimSpace(req.Name)
		if req.Handicap != nil {
			u.Handicap = *req.Handicap
		}
		u.Preferences = req.Preferences
		u.UpdatedAt = d.now()

		if err := d.Users.UpdateProfile(ctx, &u); err != nil {
			fail(c, err)
			return
		}
		d.Audit.Log(ctx, u.ID, "update_profile", "")
		c.JSON(200, u)
	}
}

// ------------------- Courses -------------------

// GET /api/courses?q=
func ListCourses(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := d.Courses.ListCourses(c.Request.Context(), strings.TrimSpace(c.Query("q")))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

func GetCourse(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := d.Courses.Course(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, course)
	}
}

// ------------------- Stats -------------------

// GET /api/stats recomputes the summary. When the rounds cannot be read for a
// transient reason the cached summary is served and marked stale.
func GetStats(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		s, err := RefreshStats(ctx, d.Rounds, d.Stats, uid(c), d.now())
		if apperr.Retryable(err) {
			cached, cerr := d.Stats.Stats(ctx, uid(c))
			if cerr == nil {
				log.Printf("[stats] serving cached summary user=%s: %v", uid(c), err)
				c.JSON(200, gin.H{"summary": cached, "display": stats.Display(cached), "stale": true})
				return
			}
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"summary": s, "display": stats.Display(s)})
	}
}
