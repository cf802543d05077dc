package db

import (
	"context"
	"fmt"

	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

func (db *Postgres) CreateClient(ctx context.Context, c model.Client) (*model.Client, error) {
	var created model.Client
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO clients (id, name, house_id, date_of_birth, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, name, house_id, date_of_birth, created_at
	`, c.ID, c.Name, c.HouseID, c.DateOfBirth).Scan(
		&created.ID,
		&created.Name,
		&created.HouseID,
		&created.DateOfBirth,
		&created.CreatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to insert client: %w", err)
	}
	return &created, nil
}

func (db *Postgres) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, house_id, date_of_birth, created_at
		FROM clients
		WHERE id = $1
	`, id).Scan(
		&c.ID,
		&c.Name,
		&c.HouseID,
		&c.DateOfBirth,
		&c.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}
