package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/repository"
)

type sessionRepository struct {
	client     *redislib.Client
	prefix     string
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewSessionRepository creates a Redis-backed session repository.
// A zero ttl keeps admitted records until logout. Pending logins expire after pendingTTL
// unless it is zero.
func NewSessionRepository(client *redislib.Client, prefix string, ttl, pendingTTL time.Duration) repository.SessionRepository {
	if prefix == "" {
		prefix = "staff-session:"
	}
	return &sessionRepository{
		client:     client,
		prefix:     prefix,
		ttl:        max(ttl, 0),
		pendingTTL: max(pendingTTL, 0),
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	result, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	session.Touch(time.Now())

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := r.ttl
	if session.IsPending() && r.pendingTTL > 0 {
		ttl = r.pendingTTL
	}
	return r.client.Set(ctx, r.key(session.ID), payload, ttl).Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *sessionRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
