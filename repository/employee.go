package repository

import (
	"context"

	"github.com/fastygo/staff-portal/domain"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	Upsert(ctx context.Context, employee *domain.Employee) error
}
