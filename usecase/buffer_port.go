package usecase

import (
	"context"

	"github.com/fastygo/staff-portal/domain"
)

// Buffered operations on directory entries.
const (
	OperationUpsert = "upsert"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferEmployee(ctx context.Context, operation string, employee *domain.Employee) error
}
