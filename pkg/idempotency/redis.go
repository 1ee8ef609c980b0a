package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/stayware/stayflow/pkg/models"
)

const keyPrefix = "stayflow:idempotency:"

// commands is the subset of redis operations the store issues. Narrowed
// from redis.UniversalClient so tests can fake the backing server.
type commands interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	SetXX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore implements the two-phase protocol with SET NX, which gives the
// atomic claim across multiple server instances.
type RedisStore struct {
	client commands
	logger *slog.Logger
}

func NewRedisStore(client redis.UniversalClient, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.With("module", "idempotency_store", "backend", "redis"),
	}
}

// NewRedisStoreFromURL connects a client from a redis:// URL.
func NewRedisStoreFromURL(url string, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return NewRedisStore(redis.NewClient(opts), logger), nil
}

func (s *RedisStore) Check(ctx context.Context, key, workflowName, actorID, workspaceID string, ttl time.Duration) (CheckResult, error) {
	now := time.Now().UTC()

	record := models.IdempotencyRecord{
		Key:          key,
		WorkflowName: workflowName,
		ActorID:      actorID,
		WorkspaceID:  workspaceID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, keyPrefix+key, payload, ttl).Result()
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to claim idempotency key: %w", err)
	}

	if claimed {
		return CheckResult{}, nil
	}

	stored, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as fresh.
		return CheckResult{}, nil
	}

	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	var existing models.IdempotencyRecord
	if err := json.Unmarshal([]byte(stored), &existing); err != nil {
		return CheckResult{}, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}

	return CheckResult{Duplicate: true, Cached: existing.Result}, nil
}

func (s *RedisStore) Store(ctx context.Context, key, workflowName string, result json.RawMessage, actorID, workspaceID string, ttl time.Duration) error {
	now := time.Now().UTC()

	record := models.IdempotencyRecord{
		Key:          key,
		WorkflowName: workflowName,
		ActorID:      actorID,
		WorkspaceID:  workspaceID,
		Result:       result,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	// KEEPTTL preserves the window started by Check, so the dedup horizon is
	// measured from the original claim, not from completion. XX restricts
	// the write to an existing claim: SET KEEPTTL on an absent key would
	// create it without an expiry, deduplicating the operation forever.
	updated, err := s.client.SetXX(ctx, keyPrefix+key, payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to store idempotency result: %w", err)
	}

	if !updated {
		// No claim survives: the workflow outlived the TTL window, or Check
		// degraded during an outage. Start a fresh window so the result is
		// still bounded by the TTL.
		err = s.client.Set(ctx, keyPrefix+key, payload, ttl).Err()
		if err != nil {
			return fmt.Errorf("failed to store idempotency result: %w", err)
		}
	}

	return nil
}
