package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/infrastructure/buffer"
	"github.com/fastygo/staff-portal/usecase"
)

// BufferBridge turns use-case writes into buffer items.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferEmployee(ctx context.Context, operation string, employee *domain.Employee) error {
	if b.processor == nil || employee == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(employee)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		SubjectID: employee.ID,
		Entity:    buffer.EntityEmployee,
		Operation: operation,
		Data:      payload,
		Priority:  2,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
