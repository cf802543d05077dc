package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeLedger mirrors the SQL semantics of db.Postgres in memory.
type fakeLedger struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	refresh  map[string]*model.RefreshToken
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		sessions: map[string]*model.Session{},
		refresh:  map[string]*model.RefreshToken{},
	}
}

func (f *fakeLedger) CreatePair(ctx context.Context, session model.Session, refresh model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions[session.TokenHash] = &session
	f.refresh[refresh.TokenHash] = &refresh
	return nil
}

func (f *fakeLedger) RotatePair(ctx context.Context, oldHash, employeeID string, at time.Time, session model.Session, refresh model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	old, ok := f.refresh[oldHash]
	if !ok || old.EmployeeID != employeeID || old.Revoked || !old.ExpiresAt.After(at) {
		return db.ErrRefreshConsumed
	}
	old.Revoked = true
	revokedAt := at
	old.RevokedAt = &revokedAt
	f.sessions[session.TokenHash] = &session
	f.refresh[refresh.TokenHash] = &refresh
	return nil
}

func (f *fakeLedger) InvalidateSession(ctx context.Context, token string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if s, ok := f.sessions[token]; ok && s.IsValid {
		s.IsValid = false
		s.UpdatedAt = at
	}
	return nil
}

func (f *fakeLedger) RevokeRefreshToken(ctx context.Context, token string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if r, ok := f.refresh[token]; ok && !r.Revoked {
		r.Revoked = true
		revokedAt := at
		r.RevokedAt = &revokedAt
	}
	return nil
}

func (f *fakeLedger) GetSession(ctx context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeLedger) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.refresh[token]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeLedger) DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for k, s := range f.sessions {
		if sessionCollectable(*s, cutoff) {
			delete(f.sessions, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) DeleteStaleRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for k, r := range f.refresh {
		if refreshCollectable(*r, cutoff) {
			delete(f.refresh, k)
			n++
		}
	}
	return n, nil
}

// sessionCollectable is the in-memory form of the DeleteStaleSessions
// predicate.
func sessionCollectable(s model.Session, cutoff time.Time) bool {
	if s.ExpiresAt.Before(cutoff) {
		return true
	}
	return !s.IsValid && s.UpdatedAt.Before(cutoff)
}

// refreshCollectable is the in-memory form of the DeleteStaleRefreshTokens
// predicate.
func refreshCollectable(r model.RefreshToken, cutoff time.Time) bool {
	if r.ExpiresAt.Before(cutoff) {
		return true
	}
	return r.Revoked && r.RevokedAt != nil && r.RevokedAt.Before(cutoff)
}

type fakeEmployeeStore struct {
	mu        sync.Mutex
	employees map[string]model.Employee
	err       error
}

func newFakeEmployeeStore() *fakeEmployeeStore {
	return &fakeEmployeeStore{employees: map[string]model.Employee{}}
}

func (f *fakeEmployeeStore) CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.employees[e.ID]; ok {
		return nil, db.ErrDuplicateID
	}
	for _, existing := range f.employees {
		if existing.Email == e.Email {
			return nil, db.ErrDuplicateEmail
		}
	}
	f.employees[e.ID] = e
	return &e, nil
}

func (f *fakeEmployeeStore) GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.employees[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEmployeeStore) GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.employees {
		if strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeEmployeeStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	list := make([]model.Employee, 0, len(f.employees))
	for _, e := range f.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

var errStoreDown = errors.New("store unavailable")

func testCleanupConfig() config.CleanupConfig {
	return config.CleanupConfig{
		Interval:         24 * time.Hour,
		SessionRetention: 24 * time.Hour,
		RefreshRetention: 7 * 24 * time.Hour,
	}
}

func newTestTokenService(t *testing.T) (*TokenService, *fakeLedger, *testClock) {
	t.Helper()
	clock := newTestClock()
	codec, err := token.NewCodecWithClock(token.Config{
		SessionSecret: "session-secret",
		RefreshSecret: "refresh-secret",
		SessionTTL:    15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, clock.Now)
	require.NoError(t, err)

	ledger := newFakeLedger()
	svc := NewTokenServiceWithClock(ledger, codec, testCleanupConfig(), zerolog.Nop(), clock.Now)
	return svc, ledger, clock
}
