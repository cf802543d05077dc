package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

const employeeColumns = `id, name, email, password_hash, position, hire_date, sex, created_at, updated_at`

func (db *Postgres) CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	query := `
		INSERT INTO employees (id, name, email, password_hash, position, hire_date, sex, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + employeeColumns

	created, err := scanEmployee(db.Pool.QueryRow(ctx, query,
		e.ID,
		e.Name,
		e.Email,
		e.PasswordHash,
		e.Position,
		e.HireDate,
		e.Sex,
	))
	if err != nil {
		if pgErr, ok := uniqueViolation(err); ok {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, ErrDuplicateEmail
			}
			return nil, ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to insert employee: %w", err)
	}
	return created, nil
}

func (db *Postgres) GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (db *Postgres) GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	e, err := scanEmployee(db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee by email: %w", err)
	}
	return e, nil
}

func (db *Postgres) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	list := []model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func scanEmployee(row pgx.Row) (*model.Employee, error) {
	var e model.Employee
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.PasswordHash,
		&e.Position,
		&e.HireDate,
		&e.Sex,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
