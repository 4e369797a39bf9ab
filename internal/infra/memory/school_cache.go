package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

// SchoolMetadataCache caches school directory lookups with TTL to avoid
// hitting the directory on every ranking decoration.
type SchoolMetadataCache struct {
	directory app.SchoolDirectory
	ttl       time.Duration
	clock     func() time.Time
	sf        singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedSchool
}

type cachedSchool struct {
	school    domain.School
	expiresAt time.Time
}

func NewSchoolMetadataCache(directory app.SchoolDirectory, ttl time.Duration) *SchoolMetadataCache {
	return &SchoolMetadataCache{
		directory: directory,
		ttl:       ttl,
		clock:     time.Now,
		cache:     make(map[string]cachedSchool),
	}
}

func (c *SchoolMetadataCache) Lookup(ctx context.Context, schoolID string) (domain.School, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[schoolID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.school, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(schoolID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[schoolID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.school, nil
		}
		c.mu.RUnlock()

		school, err := c.directory.Lookup(ctx, schoolID)
		if err != nil {
			// not-found is not cached; the directory may gain the school later
			return domain.School{}, err
		}

		c.mu.Lock()
		c.cache[schoolID] = cachedSchool{
			school:    school,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return school, nil
	})
	if err != nil {
		return domain.School{}, err
	}
	return result.(domain.School), nil
}

func (c *SchoolMetadataCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations; package-level rand is
	// safe for concurrent singleflight groups
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
