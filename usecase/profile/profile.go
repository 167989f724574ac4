package profile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/repository"
	"github.com/fastygo/staff-portal/usecase"
)

// UseCase reads and writes directory entries. Writes fall back to the offline buffer when the
// directory is unreachable.
type UseCase struct {
	employees repository.EmployeeRepository
	buffer    usecase.OperationBuffer
	logger    *zap.Logger
	now       func() time.Time
}

func New(employees repository.EmployeeRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		employees: employees,
		buffer:    buffer,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, employeeID string) (*domain.Employee, error) {
	if uc.employees == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return uc.employees.GetByID(ctx, employeeID)
}

// SaveProfile upserts the entry. A buffered write counts as saved.
func (uc *UseCase) SaveProfile(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	if employee == nil || employee.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	now := uc.now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	var err error
	if uc.employees != nil {
		if err = uc.employees.Upsert(ctx, employee); err == nil {
			return employee, nil
		}
	} else {
		err = domain.NewError(domain.ErrCodeInternal, "employee directory not configured")
	}

	if uc.buffer == nil {
		return nil, err
	}
	if bufErr := uc.buffer.BufferEmployee(ctx, usecase.OperationUpsert, employee); bufErr != nil {
		uc.logger.Error("failed to buffer profile update",
			zap.String("employee_id", employee.ID),
			zap.Error(bufErr))
		return nil, err
	}
	uc.logger.Warn("profile update buffered due to repository error",
		zap.String("employee_id", employee.ID),
		zap.Error(err))
	return employee, nil
}
