package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

const eventColumns = `id, client_id, type, description, begin_date, end_date, begin_time, end_time,
	number_staff_required, medical, created_at`

func (db *Postgres) CreateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	var medical []byte
	if e.Medical != nil {
		raw, err := json.Marshal(e.Medical)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal medical detail: %w", err)
		}
		medical = raw
	}

	query := `
		INSERT INTO events (id, client_id, type, description, begin_date, end_date, begin_time, end_time,
			number_staff_required, medical, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING ` + eventColumns

	created, err := scanEvent(db.Pool.QueryRow(ctx, query,
		e.ID,
		e.ClientID,
		e.Type,
		e.Description,
		e.BeginDate,
		e.EndDate,
		e.BeginTime,
		e.EndTime,
		e.NumberStaffRequired,
		medical,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return created, nil
}

// ListEvents returns a client's events whose begin date falls inside window,
// ordered by begin date then begin time.
func (db *Postgres) ListEvents(ctx context.Context, clientID string, window model.EventWindow) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE client_id = $1 AND begin_date >= $2 AND ($3::date IS NULL OR begin_date <= $3::date)
		ORDER BY begin_date, begin_time, id`

	rows, err := db.Pool.Query(ctx, query, clientID, window.Begin, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	list := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e       model.Event
		medical []byte
	)
	err := row.Scan(
		&e.ID,
		&e.ClientID,
		&e.Type,
		&e.Description,
		&e.BeginDate,
		&e.EndDate,
		&e.BeginTime,
		&e.EndTime,
		&e.NumberStaffRequired,
		&medical,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(medical) > 0 {
		var m model.MedicalEvent
		if err := json.Unmarshal(medical, &m); err != nil {
			return nil, fmt.Errorf("failed to decode medical detail: %w", err)
		}
		e.Medical = &m
	}
	e.BeginDate = utcDay(e.BeginDate)
	e.EndDate = utcDay(e.EndDate)
	e.BeginTime = e.BeginTime.UTC()
	e.EndTime = e.EndTime.UTC()
	return &e, nil
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
