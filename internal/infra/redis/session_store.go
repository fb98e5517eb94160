package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"scheme-eligibility-service/internal/domain"
)

const maxUpdateRetries = 5

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionStore keeps questionnaire state in Redis as JSON so every instance
// behind a load balancer sees the same session. Keys slide their TTL on write.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Put(ctx context.Context, id string, state domain.FlowState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.FlowState, error) {
	return s.read(ctx, s.client, id)
}

// Update applies fn inside a WATCH transaction and retries when another
// writer changed the key first.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domain.FlowState) error) (domain.FlowState, error) {
	key := s.key(id)
	var result domain.FlowState

	txf := func(tx *redis.Tx) error {
		state, err := s.read(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&state); err != nil {
			return err
		}
		raw, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		if err == nil {
			result = state
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return domain.FlowState{}, fmt.Errorf("update session %s: too much contention", id)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return nil
}

func (s *SessionStore) read(ctx context.Context, c getter, id string) (domain.FlowState, error) {
	raw, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.FlowState{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return domain.FlowState{}, fmt.Errorf("load session: %w", err)
	}
	state := domain.FlowState{Answers: domain.NewAnswerSet()}
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.FlowState{}, fmt.Errorf("decode session: %w", err)
	}
	if state.Answers == nil {
		state.Answers = domain.NewAnswerSet()
	}
	return state, nil
}

func (s *SessionStore) key(id string) string {
	return "scheme:session:" + id
}
