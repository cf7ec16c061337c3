package internal

import (
	"context"

	"golf-tracker/internal/golf"
	"golf-tracker/internal/stats"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *golf.User, passHash string) error
	// UserByEmail also returns the password hash and whether the account is disabled.
	UserByEmail(ctx context.Context, email string) (golf.User, string, bool, error)
	UserByID(ctx context.Context, id string) (golf.User, error)
	UpdateProfile(ctx context.Context, u *golf.User) error
}

type CourseStore interface {
	ListCourses(ctx context.Context, q string) ([]golf.Course, error)
	Course(ctx context.Context, id string) (golf.Course, error)
}

type RoundFilter struct {
	UserID   string
	From     string
	To       string
	CourseID string
	Page     int
	Limit    int
}

type RoundStore interface {
	// CreateRound is a no-op when a round with the same id already exists.
	CreateRound(ctx context.Context, r *golf.Round) error
	Round(ctx context.Context, id string) (golf.Round, error)
	ListRounds(ctx context.Context, f RoundFilter) ([]golf.Round, int, error)
	AllRounds(ctx context.Context, userID string) ([]golf.Round, error)
	UpdateRound(ctx context.Context, r *golf.Round) error
	DeleteRound(ctx context.Context, id string) error
}

type StatsStore interface {
	SaveStats(ctx context.Context, s stats.Summary) error
	Stats(ctx context.Context, userID string) (stats.Summary, error)
}

type Auditor interface {
	Log(ctx context.Context, actorID, action, details string)
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

type RoundList struct {
	Items      []golf.Round `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

type RoundDetail struct {
	Round     golf.Round     `json:"round"`
	Scorecard golf.Scorecard `json:"scorecard"`
}
