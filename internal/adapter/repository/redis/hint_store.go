package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// HintStore implements usecase.HintStore using Redis. Hints expire on
// their own; losing one costs nothing but a recomputed badge.
type HintStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewHintStore creates a new HintStore.
func NewHintStore(client *redis.Client) *HintStore {
	return &HintStore{
		client: client,
		prefix: "hints:",
		ttl:    7 * 24 * time.Hour,
	}
}

func (s *HintStore) scanKey(businessID, accountID string) string {
	return s.prefix + "lastscan:" + businessID + ":" + accountID
}

func (s *HintStore) countKey(businessID, accountID string) string {
	return s.prefix + "attention:" + businessID + ":" + accountID
}

// SetLastScan records when an account's issue scan last ran.
func (s *HintStore) SetLastScan(ctx context.Context, businessID, accountID string, at time.Time) error {
	return s.client.Set(ctx, s.scanKey(businessID, accountID), at.UTC().Format(time.RFC3339Nano), s.ttl).Err()
}

// GetLastScan returns the last scan timestamp, or nil when none recorded.
func (s *HintStore) GetLastScan(ctx context.Context, businessID, accountID string) (*time.Time, error) {
	raw, err := s.client.Get(ctx, s.scanKey(businessID, accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// SetAttentionCount records an account's attention badge count.
func (s *HintStore) SetAttentionCount(ctx context.Context, businessID, accountID string, count int) error {
	return s.client.Set(ctx, s.countKey(businessID, accountID), count, s.ttl).Err()
}

// GetAttentionCount returns the attention badge count, zero when absent.
func (s *HintStore) GetAttentionCount(ctx context.Context, businessID, accountID string) (int, error) {
	raw, err := s.client.Get(ctx, s.countKey(businessID, accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}
