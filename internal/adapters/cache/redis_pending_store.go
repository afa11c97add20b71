package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "payloads:pending:"

// RedisPendingStore keeps pending payload requests in Redis so every API
// instance and the cleanup worker see the same outstanding set. Entries carry
// no Redis TTL on purpose: expiry alone is never grounds for deletion, the
// cleanup worker must first confirm the payload cannot resolve anymore.
type RedisPendingStore struct {
	client *redis.Client
}

func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

func pendingKey(applicationID, payloadID string) string {
	return pendingKeyPrefix + applicationID + ":" + payloadID
}

func (s *RedisPendingStore) Put(ctx context.Context, pending domain.PendingRequest) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, pendingKey(pending.ApplicationID, pending.PayloadID), raw, 0).Err()
}

func (s *RedisPendingStore) Get(ctx context.Context, applicationID, payloadID string) (*domain.PendingRequest, error) {
	raw, err := s.client.Get(ctx, pendingKey(applicationID, payloadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var pending domain.PendingRequest
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (s *RedisPendingStore) Delete(ctx context.Context, applicationID, payloadID string) error {
	return s.client.Del(ctx, pendingKey(applicationID, payloadID)).Err()
}

func (s *RedisPendingStore) List(ctx context.Context) ([]domain.PendingRequest, error) {
	var result []domain.PendingRequest
	iter := s.client.Scan(ctx, 0, pendingKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var pending domain.PendingRequest
		if err := json.Unmarshal(raw, &pending); err != nil {
			continue
		}
		result = append(result, pending)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
