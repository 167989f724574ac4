package repository

import (
	"context"

	"github.com/fastygo/staff-portal/domain"
)

// SessionRepository stores whole session records. Save replaces the record in one write.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
