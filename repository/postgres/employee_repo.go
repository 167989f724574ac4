package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/repository"
)

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates a Postgres-backed employee directory.
func NewEmployeeRepository(pool *pgxpool.Pool) repository.EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	const query = `
		SELECT id, role, department, manager, full_name, email, phone, profile_complete, metadata, created_at, updated_at
		FROM employees
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var (
		employee domain.Employee
		role     string
		metadata []byte
	)
	if err := row.Scan(
		&employee.ID,
		&role,
		&employee.Department,
		&employee.Manager,
		&employee.FullName,
		&employee.Email,
		&employee.Phone,
		&employee.ProfileComplete,
		&metadata,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	employee.Role = domain.Role(role)
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &employee.Metadata)
	}
	return &employee, nil
}

func (r *employeeRepository) Upsert(ctx context.Context, employee *domain.Employee) error {
	if employee == nil || employee.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO employees (id, role, department, manager, full_name, email, phone, profile_complete, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET role = EXCLUDED.role,
		department = EXCLUDED.department,
		manager = EXCLUDED.manager,
		full_name = EXCLUDED.full_name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		profile_complete = EXCLUDED.profile_complete,
		metadata = EXCLUDED.metadata,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	metadata := marshalMap(employee.Metadata)
	var createdAt, updatedAt time.Time

	if err := r.pool.QueryRow(ctx, query,
		employee.ID,
		string(employee.Role),
		employee.Department,
		employee.Manager,
		employee.FullName,
		employee.Email,
		employee.Phone,
		employee.ProfileComplete,
		metadata,
		nullTime(employee.CreatedAt),
	).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}

	employee.CreatedAt = createdAt
	employee.UpdatedAt = updatedAt
	return nil
}
