package consensus

import (
    "time"

    lru "github.com/hashicorp/golang-lru"
    "validator_payments_api/internal/domain"
)

// ValidatorCache memoizes identifier resolution so that repeated payment
// computations over the same validator set skip the beacon round trips.
type ValidatorCache struct {
    lruCache *lru.Cache
    ttl      time.Duration
}

type cacheEntry struct {
    info domain.ValidatorInfo
    ts   time.Time
}

func NewValidatorCache(maxEntries int, ttl time.Duration) (*ValidatorCache, error) {
    c, err := lru.New(maxEntries)
    if err != nil {
        return nil, err
    }
    return &ValidatorCache{
        lruCache: c,
        ttl:      ttl,
    }, nil
}

func (c *ValidatorCache) Get(id string) (domain.ValidatorInfo, bool) {
    raw, ok := c.lruCache.Get(id)
    if !ok {
        return domain.ValidatorInfo{}, false
    }
    e := raw.(cacheEntry)
    if time.Since(e.ts) > c.ttl {
        c.lruCache.Remove(id)
        return domain.ValidatorInfo{}, false
    }
    return e.info, true
}

func (c *ValidatorCache) Add(id string, info domain.ValidatorInfo) {
    c.lruCache.Add(id, cacheEntry{
        info: info,
        ts:   time.Now(),
    })
}
