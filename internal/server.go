package internal

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/entry"
	"golf-tracker/internal/events"
	"golf-tracker/internal/obs"
)

// Deps is everything the HTTP handlers need.
type Deps struct {
	Users   UserStore
	Courses CourseStore
	Rounds  RoundStore
	Stats   StatsStore
	Audit   Auditor
	Events  events.Publisher
	Entries *entry.Registry

	Secret       string
	CookieSecure bool
	Production   bool
	StaticDir    string

	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// validate checks request bodies that reuse the domain types' own rules.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(apperr.JSONTagName)
	return v
}()

func NewRouter(d *Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(apperr.JSONTagName)
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}

	r := gin.New()
	r.Use(gin.Logger(), Env(d.Production), Recovery(), obs.Middleware())

	// Frontend static
	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
		index := filepath.Join(d.StaticDir, "index.html")
		r.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
				fail(c, apperr.ErrNotFound)
				return
			}
			c.File(index)
		})
	}

	api := r.Group("/api")
	{
		api.POST("/auth/register", Register(d))
		api.POST("/auth/login", Login(d))
		api.POST("/auth/logout", Logout(d))

		authed := api.Group("", Auth(d.Secret))

		authed.GET("/me", Me(d))
		authed.PUT("/me", UpdateMe(d))

		authed.GET("/courses", ListCourses(d))
		authed.GET("/courses/:id", GetCourse(d))

		// rounds: ?from=&to=&courseId=&page=&limit=
		authed.GET("/rounds", ListRounds(d))
		authed.GET("/rounds/recent", RecentRounds(d))
		authed.POST("/rounds", CreateRound(d))
		authed.GET("/rounds/:id", GetRound(d))
		authed.PUT("/rounds/:id", UpdateRound(d))
		authed.DELETE("/rounds/:id", DeleteRound(d))

		authed.GET("/stats", GetStats(d))

		// step-by-step round entry
		entries := authed.Group("/entries")
		{
			entries.POST("", OpenEntry(d))
			entries.GET("/:id", GetEntry(d))
			entries.DELETE("/:id", DiscardEntry(d))
			entries.PUT("/:id/basic", EditEntryBasic(d))
			entries.POST("/:id/participants", AddEntryParticipant(d))
			entries.PUT("/:id/participants/:index", UpdateEntryParticipant(d))
			entries.DELETE("/:id/participants/:index", RemoveEntryParticipant(d))
			entries.PUT("/:id/scores/:hole", EditEntryScore(d))
			entries.POST("/:id/advance", AdvanceEntry(d))
			entries.POST("/:id/retreat", RetreatEntry(d))
			entries.POST("/:id/submit", SubmitEntry(d))
			entries.DELETE("/:id/notice", HideEntryNotice(d))
		}
	}

	return r
}
