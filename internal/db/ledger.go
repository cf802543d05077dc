package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

// ErrRefreshConsumed is returned by RotatePair when the presented refresh
// token has no live, unrevoked row for the employee.
var ErrRefreshConsumed = errors.New("refresh token already consumed")

func (db *Postgres) CreatePair(ctx context.Context, session model.Session, refresh model.RefreshToken) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := insertPair(ctx, tx, session, refresh); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RotatePair revokes the refresh token digested as oldHash and stores the replacement pair in one
// transaction. The revoke only matches an unrevoked, unexpired row, so two
// concurrent rotations of the same token cannot both succeed.
func (db *Postgres) RotatePair(ctx context.Context, oldHash, employeeID string, at time.Time, session model.Session, refresh model.RefreshToken) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $3
		WHERE token_hash = $1 AND employee_id = $2 AND revoked = FALSE AND expires_at > $3
	`, oldHash, employeeID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRefreshConsumed
	}

	if err := insertPair(ctx, tx, session, refresh); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertPair(ctx context.Context, tx pgx.Tx, session model.Session, refresh model.RefreshToken) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO sessions (token_hash, employee_id, expires_at, is_valid, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
	`, session.TokenHash, session.EmployeeID, session.ExpiresAt, session.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, employee_id, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`, refresh.TokenHash, refresh.EmployeeID, refresh.ExpiresAt, refresh.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

func (db *Postgres) InvalidateSession(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE sessions
		SET is_valid = FALSE, updated_at = $2
		WHERE token_hash = $1 AND is_valid = TRUE
	`, tokenHash, at)
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

func (db *Postgres) RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE token_hash = $1 AND revoked = FALSE
	`, tokenHash, at)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (db *Postgres) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session
	err := db.Pool.QueryRow(ctx, `
		SELECT token_hash, employee_id, expires_at, is_valid, created_at, updated_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash).Scan(
		&s.TokenHash,
		&s.EmployeeID,
		&s.ExpiresAt,
		&s.IsValid,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (db *Postgres) GetRefreshToken(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var r model.RefreshToken
	err := db.Pool.QueryRow(ctx, `
		SELECT token_hash, employee_id, expires_at, revoked, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, tokenHash).Scan(
		&r.TokenHash,
		&r.EmployeeID,
		&r.ExpiresAt,
		&r.Revoked,
		&r.RevokedAt,
		&r.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &r, nil
}

// DeleteStaleSessions removes sessions that expired, or were invalidated,
// strictly before cutoff.
func (db *Postgres) DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at < $1 OR (is_valid = FALSE AND updated_at < $1)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteStaleRefreshTokens removes refresh tokens that expired, or were
// revoked, strictly before cutoff.
func (db *Postgres) DeleteStaleRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE expires_at < $1 OR (revoked = TRUE AND revoked_at < $1)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
