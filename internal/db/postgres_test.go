package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PostgresConfig
		want    string
		wantErr bool
	}{
		{
			name: "database url wins",
			cfg:  config.PostgresConfig{DatabaseURL: "postgres://x@db/app", User: "ignored", Database: "ignored"},
			want: "postgres://x@db/app",
		},
		{
			name: "assembled with password",
			cfg:  config.PostgresConfig{Host: "pg", Port: "6543", User: "hh", Password: "p@ss", Database: "hands"},
			want: "postgres://hh:p%40ss@pg:6543/hands?sslmode=disable",
		},
		{
			name: "defaults host and port",
			cfg:  config.PostgresConfig{User: "hh", Database: "hands", SSLMode: "require"},
			want: "postgres://hh@localhost:5432/hands?sslmode=require",
		},
		{
			name:    "missing user",
			cfg:     config.PostgresConfig{Database: "hands"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPostgresURL(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIsNoRows(t *testing.T) {
	require.True(t, IsNoRows(pgx.ErrNoRows))
	require.True(t, IsNoRows(errors.Join(errors.New("scan"), pgx.ErrNoRows)))
	require.False(t, IsNoRows(errors.New("boom")))
}

func TestUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "employees_email_key"}
	got, ok := uniqueViolation(errors.Join(errors.New("insert"), pgErr))
	require.True(t, ok)
	require.Equal(t, "employees_email_key", got.ConstraintName)

	_, ok = uniqueViolation(&pgconn.PgError{Code: "23503"})
	require.False(t, ok)
}
