package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// PolicyCache is the explicitly-owned in-process tenant policy cache. Loads
// are lazy per key; Invalidate drops everything instead of updating entries
// in place. Stale reads between a policy write and a reset are accepted in
// exchange for read latency.
type PolicyCache struct {
	repo ports.PolicyRepository

	mu       sync.RWMutex
	byOrigin map[string]*domain.OriginPolicy
	byApp    map[string]*domain.OriginPolicy
	byAPIKey map[string]*domain.OriginPolicy
}

func NewPolicyCache(repo ports.PolicyRepository) *PolicyCache {
	c := &PolicyCache{repo: repo}
	c.reset()
	return c
}

func (c *PolicyCache) reset() {
	c.byOrigin = make(map[string]*domain.OriginPolicy)
	c.byApp = make(map[string]*domain.OriginPolicy)
	c.byAPIKey = make(map[string]*domain.OriginPolicy)
}

// Invalidate drops every cached policy. The next read reloads from storage.
func (c *PolicyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *PolicyCache) GetByOriginAndApplication(ctx context.Context, origin, applicationID string) (*domain.OriginPolicy, error) {
	key := origin + "|" + applicationID
	c.mu.RLock()
	cached, ok := c.byOrigin[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	policy, err := c.repo.GetByOriginAndApplication(ctx, origin, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c.store(policy, key, "", "")
	return policy, nil
}

func (c *PolicyCache) GetByApplication(ctx context.Context, applicationID string) (*domain.OriginPolicy, error) {
	c.mu.RLock()
	cached, ok := c.byApp[applicationID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	policy, err := c.repo.GetByApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c.store(policy, "", applicationID, "")
	return policy, nil
}

func (c *PolicyCache) GetByAPIKey(ctx context.Context, apiKey string) (*domain.OriginPolicy, error) {
	c.mu.RLock()
	cached, ok := c.byAPIKey[apiKey]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	policy, err := c.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c.store(policy, "", "", apiKey)
	return policy, nil
}

func (c *PolicyCache) store(policy *domain.OriginPolicy, originKey, appKey, apiKey string) {
	if policy == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if originKey != "" {
		c.byOrigin[originKey] = policy
	}
	if appKey != "" {
		c.byApp[appKey] = policy
	}
	if apiKey != "" {
		c.byAPIKey[apiKey] = policy
	}
}
