package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeClientStore struct {
	mu      sync.Mutex
	clients map[string]model.Client
}

func (f *fakeClientStore) CreateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clients == nil {
		f.clients = map[string]model.Client{}
	}
	if _, ok := f.clients[c.ID]; ok {
		return nil, db.ErrDuplicateID
	}
	f.clients[c.ID] = c
	return &c, nil
}

func (f *fakeClientStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

type fakeEventStore struct {
	mu         sync.Mutex
	events     []model.Event
	lastWindow model.EventWindow
}

func (f *fakeEventStore) CreateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return &e, nil
}

func (f *fakeEventStore) ListEvents(ctx context.Context, clientID string, window model.EventWindow) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWindow = window
	var out []model.Event
	for _, e := range f.events {
		if e.ClientID != clientID || e.BeginDate.Before(window.Begin) {
			continue
		}
		if window.End != nil && e.BeginDate.After(*window.End) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].BeginDate.Equal(out[j].BeginDate) {
			return out[i].BeginDate.Before(out[j].BeginDate)
		}
		return out[i].BeginTime.Before(out[j].BeginTime)
	})
	return out, nil
}

func newEventFixture(t *testing.T) (*EventService, *fakeEventStore) {
	t.Helper()
	clients := NewClientService(&fakeClientStore{})
	_, err := clients.Create(context.Background(), model.CreateClientRequest{ID: "C1", Name: "Casey"})
	require.NoError(t, err)

	events := &fakeEventStore{}
	svc := NewEventService(clients, events)
	svc.now = func() time.Time { return time.Date(2026, time.April, 1, 15, 30, 0, 0, time.UTC) }
	return svc, events
}

func workEvent(date, begin, end string) model.CreateEventRequest {
	return model.CreateEventRequest{
		Type:      "WORK",
		BeginDate: date,
		EndDate:   date,
		BeginTime: begin,
		EndTime:   end,
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2026, time.April, 1, 15, 30, 0, 0, time.UTC)

	window, err := ParseWindow("", "", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), window.Begin)
	require.Nil(t, window.End)

	window, err = ParseWindow("2026-04-01", "2026-04-01", now)
	require.NoError(t, err)
	require.Equal(t, window.Begin, *window.End)

	tests := []struct {
		name       string
		begin, end string
		field      string
	}{
		{name: "only begin", begin: "2026-04-01", field: "endDate"},
		{name: "only end", end: "2026-04-01", field: "beginDate"},
		{name: "malformed begin", begin: "04/01/2026", end: "2026-04-02", field: "beginDate"},
		{name: "end before begin", begin: "2026-04-02", end: "2026-04-01", field: "endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWindow(tt.begin, tt.end, now)
			svcErr := requireKind(t, err, KindValidation)
			require.Contains(t, svcErr.Fields, tt.field)
		})
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newEventFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   model.CreateEventRequest
		field string
	}{
		{name: "end before begin time", req: workEvent("2026-04-02", "10:00", "09:00"), field: "endTime"},
		{name: "equal times", req: workEvent("2026-04-02", "10:00", "10:00"), field: "endTime"},
		{name: "bad type", req: func() model.CreateEventRequest { r := workEvent("2026-04-02", "08:00", "09:00"); r.Type = "PARTY"; return r }(), field: "type"},
		{name: "medical without detail", req: func() model.CreateEventRequest { r := workEvent("2026-04-02", "08:00", "09:00"); r.Type = "MEDICAL"; return r }(), field: "medical"},
		{name: "detail on work event", req: func() model.CreateEventRequest {
			r := workEvent("2026-04-02", "08:00", "09:00")
			r.Medical = &model.MedicalEventRequest{Reason: "checkup", Doctor: "Dr. Who"}
			return r
		}(), field: "medical"},
		{name: "end date before begin date", req: model.CreateEventRequest{Type: "WORK", BeginDate: "2026-04-03", EndDate: "2026-04-02", BeginTime: "08:00", EndTime: "09:00"}, field: "endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "C1", tt.req)
			svcErr := requireKind(t, err, KindValidation)
			require.Contains(t, svcErr.Fields, tt.field)
		})
	}
}

func TestCreateEventStoresTimeOfDayOnReferenceDate(t *testing.T) {
	svc, events := newEventFixture(t)

	req := workEvent("2026-04-02", "08:15", "09:45")
	req.Type = "MEDICAL"
	req.Medical = &model.MedicalEventRequest{Reason: "checkup", Doctor: "Dr. Grey", DoctorType: "GP"}

	created, err := svc.Create(context.Background(), "C1", req)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, model.ReferenceDate.Add(8*time.Hour+15*time.Minute), created.BeginTime)
	require.Equal(t, time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC), created.BeginDate)
	require.Equal(t, "Dr. Grey", created.Medical.Doctor)
	require.Len(t, events.events, 1)
}

func TestCreateEventUnknownClient(t *testing.T) {
	svc, _ := newEventFixture(t)
	_, err := svc.Create(context.Background(), "nobody", workEvent("2026-04-02", "08:00", "09:00"))
	requireKind(t, err, KindNotFound)
}

func TestConflictSummary(t *testing.T) {
	svc, events := newEventFixture(t)
	ctx := context.Background()

	summary, err := svc.ConflictSummary(ctx, "C1", "", "")
	require.NoError(t, err)
	require.Equal(t, model.ConflictSummary{HasConflicts: false, NumConflicts: 0}, summary)
	require.Nil(t, events.lastWindow.End)

	_, err = svc.Create(ctx, "C1", workEvent("2026-04-02", "08:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "C1", workEvent("2026-04-02", "09:00", "11:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "C1", workEvent("2026-04-03", "09:00", "11:00"))
	require.NoError(t, err)

	summary, err = svc.ConflictSummary(ctx, "C1", "2026-04-01", "2026-04-30")
	require.NoError(t, err)
	require.Equal(t, model.ConflictSummary{HasConflicts: true, NumConflicts: 1}, summary)

	conflicts, err := svc.Conflicts(ctx, "C1", "2026-04-03", "2026-04-03")
	require.NoError(t, err)
	require.Empty(t, conflicts)
}

func TestConflictsUnknownClientAndBadWindow(t *testing.T) {
	svc, _ := newEventFixture(t)
	ctx := context.Background()

	_, err := svc.ConflictSummary(ctx, "nobody", "", "")
	requireKind(t, err, KindNotFound)

	_, err = svc.ConflictSummary(ctx, "C1", "2026-04-05", "2026-04-01")
	requireKind(t, err, KindValidation)
}

func TestClientCreate(t *testing.T) {
	clients := NewClientService(&fakeClientStore{})
	ctx := context.Background()

	dob := "1990-05-06"
	created, err := clients.Create(ctx, model.CreateClientRequest{ID: "C9", Name: "Robin", DateOfBirth: &dob})
	require.NoError(t, err)
	require.Equal(t, time.Date(1990, time.May, 6, 0, 0, 0, 0, time.UTC), *created.DateOfBirth)

	_, err = clients.Create(ctx, model.CreateClientRequest{ID: "C9", Name: "Robin"})
	requireKind(t, err, KindConflict)

	bad := "06/05/1990"
	_, err = clients.Create(ctx, model.CreateClientRequest{ID: "C10", Name: "Robin", DateOfBirth: &bad})
	svcErr := requireKind(t, err, KindValidation)
	require.Contains(t, svcErr.Fields, "dateOfBirth")

	_, err = clients.Get(ctx, "missing")
	requireKind(t, err, KindNotFound)
}

func TestEmployeeService(t *testing.T) {
	store := newFakeEmployeeStore()
	store.employees["E1"] = model.Employee{ID: "E1", Name: "Ada", Position: model.PositionAssociate}
	svc := NewEmployeeService(store)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Get(context.Background(), "E2")
	requireKind(t, err, KindNotFound)

	report, err := svc.Staffing(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Total)
	require.Equal(t, 0, report.ByPosition[model.PositionDirector])

	store.err = errStoreDown
	_, err = svc.List(context.Background())
	requireKind(t, err, KindInternal)
}
