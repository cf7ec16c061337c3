package internal

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
	"golf-tracker/internal/stats"
)

type memUser struct {
	user     golf.User
	hash     string
	disabled bool
}

// memStore is an in-memory implementation of every store.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*memUser
	courses map[string]golf.Course
	rounds  map[string]golf.Round
	stats   map[string]stats.Summary
	audit   []string

	failCreate error
	failRounds error
}

func newMemStore() *memStore {
	m := &memStore{
		users:   map[string]*memUser{},
		courses: map[string]golf.Course{},
		rounds:  map[string]golf.Round{},
		stats:   map[string]stats.Summary{},
	}
	for _, c := range SampleCourses(time.Now()) {
		m.courses[c.ID] = c
	}
	return m
}

func (m *memStore) CreateUser(_ context.Context, u *golf.User, passHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.user.Email == u.Email {
			return apperr.Auth(apperr.AuthEmailAlreadyInUse)
		}
	}
	m.users[u.ID] = &memUser{user: *u, hash: passHash}
	return nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (golf.User, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.user.Email == email {
			return x.user, x.hash, x.disabled, nil
		}
	}
	return golf.User{}, "", false, apperr.ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id string) (golf.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if x, ok := m.users[id]; ok {
		return x.user, nil
	}
	return golf.User{}, apperr.ErrNotFound
}

func (m *memStore) UpdateProfile(_ context.Context, u *golf.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.users[u.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	x.user = *u
	return nil
}

func (m *memStore) ListCourses(_ context.Context, q string) ([]golf.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []golf.Course{}
	for _, c := range m.courses {
		if q == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			c.Holes = nil
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Course(_ context.Context, id string) (golf.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return golf.Course{}, apperr.ErrNotFound
}

func (m *memStore) CreateRound(_ context.Context, r *golf.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.rounds[r.ID]; !ok {
		m.rounds[r.ID] = *r
	}
	return nil
}

func (m *memStore) Round(_ context.Context, id string) (golf.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rounds[id]; ok {
		return r, nil
	}
	return golf.Round{}, apperr.ErrNotFound
}

func (m *memStore) AllRounds(_ context.Context, userID string) ([]golf.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRounds != nil {
		return nil, m.failRounds
	}
	out := []golf.Round{}
	for _, r := range m.rounds {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayDate != out[j].PlayDate {
			return out[i].PlayDate > out[j].PlayDate
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) ListRounds(ctx context.Context, f RoundFilter) ([]golf.Round, int, error) {
	all, _ := m.AllRounds(ctx, f.UserID)
	var match []golf.Round
	for _, r := range all {
		if (f.From != "" && r.PlayDate < f.From) || (f.To != "" && r.PlayDate > f.To) {
			continue
		}
		if f.CourseID != "" && r.CourseID != f.CourseID {
			continue
		}
		match = append(match, r)
	}
	start := min((f.Page-1)*f.Limit, len(match))
	end := min(start+f.Limit, len(match))
	return append([]golf.Round{}, match[start:end]...), len(match), nil
}

func (m *memStore) UpdateRound(_ context.Context, r *golf.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[r.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.rounds[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRound(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.rounds, id)
	return nil
}

func (m *memStore) SaveStats(_ context.Context, s stats.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[s.UserID] = s
	return nil
}

func (m *memStore) Stats(_ context.Context, userID string) (stats.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stats[userID]; ok {
		return s, nil
	}
	return stats.Empty(userID, time.Now()), nil
}

func (m *memStore) Log(_ context.Context, actorID, action, details string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, actorID+" "+action)
}

type published struct {
	key string
	v   any
}

type memPublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *memPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{key, v})
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, s := range p.sent {
		out = append(out, s.key)
	}
	return out
}

func testToken(secret, userID string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, _ := tok.SignedString([]byte(secret))
	return s
}
