package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
	"github.com/nwarner31/helping-hands-sub001/internal/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for db.Postgres.
type memStore struct {
	mu        sync.Mutex
	employees map[string]model.Employee
	sessions  map[string]model.Session
	refresh   map[string]model.RefreshToken
	clients   map[string]model.Client
	events    []model.Event
	pingErr   error
}

func newMemStore() *memStore {
	return &memStore{
		employees: map[string]model.Employee{},
		sessions:  map[string]model.Session{},
		refresh:   map[string]model.RefreshToken{},
		clients:   map[string]model.Client{},
	}
}

func (m *memStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *memStore) CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[e.ID]; ok {
		return nil, db.ErrDuplicateID
	}
	for _, existing := range m.employees {
		if existing.Email == e.Email {
			return nil, db.ErrDuplicateEmail
		}
	}
	m.employees[e.ID] = e
	return &e, nil
}

func (m *memStore) GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

func (m *memStore) GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memStore) CreatePair(ctx context.Context, session model.Session, refresh model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.TokenHash] = session
	m.refresh[refresh.TokenHash] = refresh
	return nil
}

func (m *memStore) RotatePair(ctx context.Context, oldHash, employeeID string, at time.Time, session model.Session, refresh model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.refresh[oldHash]
	if !ok || old.EmployeeID != employeeID || old.Revoked || !old.ExpiresAt.After(at) {
		return db.ErrRefreshConsumed
	}
	old.Revoked = true
	old.RevokedAt = &at
	m.refresh[oldHash] = old
	m.sessions[session.TokenHash] = session
	m.refresh[refresh.TokenHash] = refresh
	return nil
}

func (m *memStore) InvalidateSession(ctx context.Context, tok string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tok]; ok && s.IsValid {
		s.IsValid = false
		s.UpdatedAt = at
		m.sessions[tok] = s
	}
	return nil
}

func (m *memStore) RevokeRefreshToken(ctx context.Context, tok string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.refresh[tok]; ok && !r.Revoked {
		r.Revoked = true
		r.RevokedAt = &at
		m.refresh[tok] = r
	}
	return nil
}

func (m *memStore) GetSession(ctx context.Context, tok string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tok]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) GetRefreshToken(ctx context.Context, tok string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.refresh[tok]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, s := range m.sessions {
		if sessionCollectable(s, cutoff) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteStaleRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.refresh {
		if refreshCollectable(r, cutoff) {
			delete(m.refresh, k)
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

func (m *memStore) CreateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; ok {
		return nil, db.ErrDuplicateID
	}
	m.clients[c.ID] = c
	return &c, nil
}

func (m *memStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return &e, nil
}

func (m *memStore) ListEvents(ctx context.Context, clientID string, window model.EventWindow) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if e.ClientID != clientID || e.BeginDate.Before(window.Begin) {
			continue
		}
		if window.End != nil && e.BeginDate.After(*window.End) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
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

type testServer struct {
	router *gin.Engine
	store  *memStore
	clock  *testClock
}

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Environment: "test",
			CORSOrigins: []string{"http://app.test"},
		},
		Auth: config.AuthConfig{
			SessionSecret:  "session-secret",
			RefreshSecret:  "refresh-secret",
			SessionTTL:     15 * time.Minute,
			RefreshTTL:     7 * 24 * time.Hour,
			CookieName:     "refreshToken",
			CookieSecure:   true,
			CookieSameSite: "lax",
			CookiePath:     "/",
		},
		Cleanup: config.CleanupConfig{
			Interval:         24 * time.Hour,
			SessionRetention: 24 * time.Hour,
			RefreshRetention: 7 * 24 * time.Hour,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, testConfig())
}

func newTestServerWithConfig(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	store := newMemStore()
	log := zerolog.Nop()

	codec, err := token.NewCodecWithClock(token.Config{
		SessionSecret: cfg.Auth.SessionSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		SessionTTL:    cfg.Auth.SessionTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	}, clock.Now)
	require.NoError(t, err)

	tokens := service.NewTokenServiceWithClock(store, codec, cfg.Cleanup, log, clock.Now)
	auth, err := service.NewAuthService(store, tokens, cfg.Auth, log)
	require.NoError(t, err)
	clients := service.NewClientService(store)

	router := NewRouter(Dependencies{
		Config:    cfg,
		Log:       log,
		Auth:      auth,
		Employees: service.NewEmployeeService(store),
		Clients:   clients,
		Events:    service.NewEventService(clients, store),
		DB:        store,
	})
	return &testServer{router: router, store: store, clock: clock}
}

type requestOption func(*http.Request)

func withBearer(tok string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) {
		if c != nil {
			r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func registerBody(id, email, position string) map[string]any {
	return map[string]any{
		"id":              id,
		"name":            "Employee " + id,
		"email":           email,
		"password":        "correct-horse",
		"confirmPassword": "correct-horse",
		"position":        position,
		"hireDate":        "2024-02-01",
		"sex":             "OTHER",
	}
}

// register creates an employee and returns its session token and refresh cookie.
func (s *testServer) register(t *testing.T, id, position string) (string, *http.Cookie) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", registerBody(id, strings.ToLower(id)+"@example.com", position))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[model.AuthResponse](t, w)
	cookie := refreshCookie(w)
	require.NotNil(t, cookie)
	return resp.SessionToken, cookie
}
