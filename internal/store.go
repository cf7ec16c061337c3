package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
	"golf-tracker/internal/stats"
)

// PG implements every store on one connection pool. Transient failures are
// retried with the configured backoff.
type PG struct {
	db      *pgxpool.Pool
	backoff apperr.Backoff
}

func NewPG(db *pgxpool.Pool, b apperr.Backoff) *PG {
	return &PG{db: db, backoff: b}
}

func (s *PG) retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := apperr.Retry(ctx, s.backoff, op, fn); err != nil {
		return apperr.From(err)
	}
	return nil
}

func jsonb(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return b, nil
}

// ------------------- Users -------------------

const userCols = "id, email, name, handicap, preferences, created_at, updated_at"

func scanUser(row pgx.Row, extra ...any) (golf.User, error) {
	var u golf.User
	dest := append([]any{&u.ID, &u.Email, &u.Name, &u.Handicap, &u.Preferences, &u.CreatedAt, &u.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	return u, err
}

func (s *PG) CreateUser(ctx context.Context, u *golf.User, passHash string) error {
	prefs, err := jsonb(u.Preferences)
	if err != nil {
		return err
	}
	q := psql.Insert("users").
		Columns("id", "email", "name", "pass_hash", "handicap", "preferences", "created_at", "updated_at").
		Values(u.ID, u.Email, u.Name, passHash, u.Handicap, prefs, u.CreatedAt, u.UpdatedAt)
	err = s.retry(ctx, "create user", func(ctx context.Context) error {
		_, err := qExec(ctx, s.db, q)
		return err
	})
	if apperr.Classify(err) == apperr.KindConflict {
		return apperr.Auth(apperr.AuthEmailAlreadyInUse)
	}
	return err
}

func (s *PG) UserByEmail(ctx context.Context, email string) (golf.User, string, bool, error) {
	var (
		u        golf.User
		hash     string
		disabled bool
	)
	q := psql.Select(userCols, "pass_hash", "disabled").From("users").Where(sq.Eq{"lower(email)": email})
	err := s.retry(ctx, "user by email", func(ctx context.Context) error {
		var err error
		u, err = scanUser(qRow(ctx, s.db, q), &hash, &disabled)
		return err
	})
	return u, hash, disabled, err
}

func (s *PG) UserByID(ctx context.Context, id string) (golf.User, error) {
	var u golf.User
	q := psql.Select(userCols).From("users").Where(sq.Eq{"id": id})
	err := s.retry(ctx, "user by id", func(ctx context.Context) error {
		var err error
		u, err = scanUser(qRow(ctx, s.db, q))
		return err
	})
	return u, err
}

func (s *PG) UpdateProfile(ctx context.Context, u *golf.User) error {
	prefs, err := jsonb(u.Preferences)
	if err != nil {
		return err
	}
	q := psql.Update("users").
		SetMap(map[string]any{
			"name":        u.Name,
			"handicap":    u.Handicap,
			"preferences": prefs,
			"updated_at":  u.UpdatedAt,
		}).
		Where(sq.Eq{"id": u.ID})
	return s.retry(ctx, "update profile", func(ctx context.Context) error {
		tag, err := qExec(ctx, s.db, q)
		if err == nil && tag.RowsAffected() == 0 {
			return apperr.ErrNotFound
		}
		return err
	})
}

// ------------------- Courses -------------------

const courseCols = "id, name, name_kana, address, prefecture, city, postal_code, phone, website, " +
	"holes_count, par_total, yardage_total, tees, rating, facilities, is_active, created_at, updated_at"

func scanCourse(row pgx.Row) (golf.Course, error) {
	var c golf.Course
	err := row.Scan(&c.ID, &c.Name, &c.NameKana, &c.Address, &c.Prefecture, &c.City, &c.PostalCode,
		&c.Phone, &c.Website, &c.HolesCount, &c.ParTotal, &c.YardageTotal, &c.Tees, &c.Rating,
		&c.Facilities, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *PG) ListCourses(ctx context.Context, search string) ([]golf.Course, error) {
	q := psql.Select(courseCols).From("courses").Where(sq.Eq{"is_active": true}).OrderBy("name ASC")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where(sq.Or{sq.ILike{"name": like}, sq.ILike{"name_kana": like}})
	}
	var out []golf.Course
	err := s.retry(ctx, "list courses", func(ctx context.Context) error {
		rows, err := qQuery(ctx, s.db, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = []golf.Course{}
		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

func (s *PG) Course(ctx context.Context, id string) (golf.Course, error) {
	var c golf.Course
	err := s.retry(ctx, "get course", func(ctx context.Context) error {
		var err error
		c, err = scanCourse(qRow(ctx, s.db, psql.Select(courseCols).From("courses").Where(sq.Eq{"id": id})))
		if err != nil {
			return err
		}
		rows, err := qQuery(ctx, s.db, psql.
			Select("course_id, hole_number, par, handicap, yardage, description, hazards").
			From("course_holes").
			Where(sq.Eq{"course_id": id}).
			OrderBy("hole_number ASC"))
		if err != nil {
			return err
		}
		defer rows.Close()
		c.Holes = nil
		for rows.Next() {
			var h golf.CourseHole
			if err := rows.Scan(&h.CourseID, &h.HoleNumber, &h.Par, &h.Handicap, &h.Yardage, &h.Description, &h.Hazards); err != nil {
				return err
			}
			c.Holes = append(c.Holes, h)
		}
		return rows.Err()
	})
	return c, err
}

// UpsertCourse writes a course and replaces its holes in one transaction.
func (s *PG) UpsertCourse(ctx context.Context, c golf.Course) error {
	tees, err := jsonb(c.Tees)
	if err != nil {
		return err
	}
	rating, err := jsonb(c.Rating)
	if err != nil {
		return err
	}
	facilities, err := jsonb(c.Facilities)
	if err != nil {
		return err
	}

	return s.retry(ctx, "upsert course", func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		_, err = qExecTx(ctx, tx, psql.Insert("courses").
			Columns("id", "name", "name_kana", "address", "prefecture", "city", "postal_code", "phone", "website",
				"holes_count", "par_total", "yardage_total", "tees", "rating", "facilities", "is_active",
				"created_at", "updated_at").
			Values(c.ID, c.Name, c.NameKana, c.Address, c.Prefecture, c.City, c.PostalCode, c.Phone, c.Website,
				c.HolesCount, c.ParTotal, c.YardageTotal, tees, rating, facilities, c.IsActive,
				c.CreatedAt, c.UpdatedAt).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, name_kana = EXCLUDED.name_kana, address = EXCLUDED.address,
				prefecture = EXCLUDED.prefecture, city = EXCLUDED.city, postal_code = EXCLUDED.postal_code,
				phone = EXCLUDED.phone, website = EXCLUDED.website, holes_count = EXCLUDED.holes_count,
				par_total = EXCLUDED.par_total, yardage_total = EXCLUDED.yardage_total, tees = EXCLUDED.tees,
				rating = EXCLUDED.rating, facilities = EXCLUDED.facilities, is_active = EXCLUDED.is_active,
				updated_at = EXCLUDED.updated_at`))
		if err != nil {
			return err
		}
		if _, err := qExecTx(ctx, tx, psql.Delete("course_holes").Where(sq.Eq{"course_id": c.ID})); err != nil {
			return err
		}
		if len(c.Holes) > 0 {
			ins := psql.Insert("course_holes").
				Columns("course_id", "hole_number", "par", "handicap", "yardage", "description", "hazards")
			for _, h := range c.Holes {
				yardage, err := jsonb(h.Yardage)
				if err != nil {
					return err
				}
				hazards, err := jsonb(nonNil(h.Hazards))
				if err != nil {
					return err
				}
				ins = ins.Values(c.ID, h.HoleNumber, h.Par, h.Handicap, yardage, h.Description, hazards)
			}
			if _, err := qExecTx(ctx, tx, ins); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ------------------- Rounds -------------------

const roundCols = "id, user_id, course_id, course_name, to_char(play_date, 'YYYY-MM-DD'), start_time, " +
	"weather, temperature, wind_speed, tee_name, total_score, total_par, scores, participants, memo, " +
	"is_completed, created_at, updated_at"

func scanRound(row pgx.Row) (golf.Round, error) {
	var r golf.Round
	err := row.Scan(&r.ID, &r.UserID, &r.CourseID, &r.CourseName, &r.PlayDate, &r.StartTime,
		&r.Weather, &r.Temperature, &r.WindSpeed, &r.TeeName, &r.TotalScore, &r.TotalPar,
		&r.Scores, &r.Participants, &r.Memo, &r.IsCompleted, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanRounds(rows pgx.Rows) ([]golf.Round, error) {
	defer rows.Close()
	out := []golf.Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func roundValues(r *golf.Round) (scores, participants []byte, err error) {
	if scores, err = jsonb(nonNil(r.Scores)); err != nil {
		return nil, nil, err
	}
	if participants, err = jsonb(nonNil(r.Participants)); err != nil {
		return nil, nil, err
	}
	return scores, participants, nil
}

func (s *PG) CreateRound(ctx context.Context, r *golf.Round) error {
	scores, participants, err := roundValues(r)
	if err != nil {
		return err
	}
	q := psql.Insert("rounds").
		Columns("id", "user_id", "course_id", "course_name", "play_date", "start_time", "weather",
			"temperature", "wind_speed", "tee_name", "total_score", "total_par", "scores", "participants",
			"memo", "is_completed", "created_at", "updated_at").
		Values(r.ID, r.UserID, r.CourseID, r.CourseName, sq.Expr("?::date", r.PlayDate), r.StartTime, r.Weather,
			r.Temperature, r.WindSpeed, r.TeeName, r.TotalScore, r.TotalPar, scores, participants,
			r.Memo, r.IsCompleted, r.CreatedAt, r.UpdatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING")
	return s.retry(ctx, "create round", func(ctx context.Context) error {
		_, err := qExec(ctx, s.db, q)
		return err
	})
}

func (s *PG) Round(ctx context.Context, id string) (golf.Round, error) {
	var r golf.Round
	err := s.retry(ctx, "get round", func(ctx context.Context) error {
		var err error
		r, err = scanRound(qRow(ctx, s.db, psql.Select(roundCols).From("rounds").Where(sq.Eq{"id": id})))
		return err
	})
	return r, err
}

func roundWhere(f RoundFilter) sq.And {
	where := sq.And{sq.Eq{"user_id": f.UserID}}
	if f.From != "" {
		where = append(where, sq.Expr("play_date >= ?::date", f.From))
	}
	if f.To != "" {
		where = append(where, sq.Expr("play_date <= ?::date", f.To))
	}
	if f.CourseID != "" {
		where = append(where, sq.Eq{"course_id": f.CourseID})
	}
	return where
}

// ListRounds returns one page of a user's rounds, most recent play date first,
// and the number of rounds matching the filter.
func (s *PG) ListRounds(ctx context.Context, f RoundFilter) ([]golf.Round, int, error) {
	where := roundWhere(f)
	var (
		out   []golf.Round
		total int
	)
	err := s.retry(ctx, "list rounds", func(ctx context.Context) error {
		if err := qRow(ctx, s.db, psql.Select("COUNT(*)").From("rounds").Where(where)).Scan(&total); err != nil {
			return err
		}
		rows, err := qQuery(ctx, s.db, psql.Select(roundCols).From("rounds").Where(where).
			OrderBy("play_date DESC", "created_at DESC").
			Limit(uint64(f.Limit)).
			Offset(uint64((f.Page-1)*f.Limit)))
		if err != nil {
			return err
		}
		out, err = scanRounds(rows)
		return err
	})
	return out, total, err
}

func (s *PG) AllRounds(ctx context.Context, userID string) ([]golf.Round, error) {
	var out []golf.Round
	err := s.retry(ctx, "all rounds", func(ctx context.Context) error {
		rows, err := qQuery(ctx, s.db, psql.Select(roundCols).From("rounds").
			Where(sq.Eq{"user_id": userID}).
			OrderBy("play_date DESC", "created_at DESC"))
		if err != nil {
			return err
		}
		out, err = scanRounds(rows)
		return err
	})
	return out, err
}

func (s *PG) UpdateRound(ctx context.Context, r *golf.Round) error {
	scores, participants, err := roundValues(r)
	if err != nil {
		return err
	}
	q := psql.Update("rounds").
		SetMap(map[string]any{
			"course_id":    r.CourseID,
			"course_name":  r.CourseName,
			"play_date":    sq.Expr("?::date", r.PlayDate),
			"start_time":   r.StartTime,
			"weather":      r.Weather,
			"temperature":  r.Temperature,
			"wind_speed":   r.WindSpeed,
			"tee_name":     r.TeeName,
			"total_score":  r.TotalScore,
			"total_par":    r.TotalPar,
			"scores":       scores,
			"participants": participants,
			"memo":         r.Memo,
			"updated_at":   r.UpdatedAt,
		}).
		Where(sq.Eq{"id": r.ID})
	return s.retry(ctx, "update round", func(ctx context.Context) error {
		tag, err := qExec(ctx, s.db, q)
		if err == nil && tag.RowsAffected() == 0 {
			return apperr.ErrNotFound
		}
		return err
	})
}

func (s *PG) DeleteRound(ctx context.Context, id string) error {
	return s.retry(ctx, "delete round", func(ctx context.Context) error {
		tag, err := qExec(ctx, s.db, psql.Delete("rounds").Where(sq.Eq{"id": id}))
		if err == nil && tag.RowsAffected() == 0 {
			return apperr.ErrNotFound
		}
		return err
	})
}

// ------------------- Stats -------------------

func (s *PG) SaveStats(ctx context.Context, sum stats.Summary) error {
	b, err := jsonb(sum)
	if err != nil {
		return err
	}
	q := psql.Insert("user_stats").
		Columns("user_id", "summary", "updated_at").
		Values(sum.UserID, b, sum.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET summary = EXCLUDED.summary, updated_at = EXCLUDED.updated_at")
	return s.retry(ctx, "save stats", func(ctx context.Context) error {
		_, err := qExec(ctx, s.db, q)
		return err
	})
}

// Stats reads the cached summary. A user with no cached row gets the empty
// summary.
func (s *PG) Stats(ctx context.Context, userID string) (stats.Summary, error) {
	var sum stats.Summary
	err := s.retry(ctx, "get stats", func(ctx context.Context) error {
		return qRow(ctx, s.db, psql.Select("summary").From("user_stats").Where(sq.Eq{"user_id": userID})).Scan(&sum)
	})
	if apperr.Classify(err) == apperr.KindNotFound {
		return stats.Empty(userID, time.Now()), nil
	}
	return sum, err
}
