package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

// SchoolMetadataCache caches school directory rows in Redis (hash per school)
// and falls back to the directory on cache miss.
// Metadata is stored as: HSET school:{schoolID}:meta name/county/country
type SchoolMetadataCache struct {
	client    *redis.Client
	directory app.SchoolDirectory
	ttl       time.Duration
	sf        singleflight.Group
}

func NewSchoolMetadataCache(client *redis.Client, directory app.SchoolDirectory, ttl time.Duration) *SchoolMetadataCache {
	return &SchoolMetadataCache{
		client:    client,
		directory: directory,
		ttl:       ttl,
	}
}

func (c *SchoolMetadataCache) Lookup(ctx context.Context, schoolID string) (domain.School, error) {
	key := c.key(schoolID)

	fields, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return schoolFromFields(schoolID, fields), nil
	}

	result, err, _ := c.sf.Do(schoolID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return schoolFromFields(schoolID, fields), nil
		}

		school, err := c.directory.Lookup(ctx, schoolID)
		if err != nil {
			// not-found is not cached; the directory may gain the school later
			return domain.School{}, err
		}

		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key,
			"name", school.Name,
			"county", school.County,
			"country", school.Country,
		)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return school, nil
	})
	if err != nil {
		return domain.School{}, err
	}
	return result.(domain.School), nil
}

func (c *SchoolMetadataCache) key(schoolID string) string {
	return "school:" + schoolID + ":meta"
}

func schoolFromFields(schoolID string, fields map[string]string) domain.School {
	return domain.School{
		ID:      schoolID,
		Name:    fields["name"],
		County:  fields["county"],
		Country: fields["country"],
	}
}

func (c *SchoolMetadataCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	// package-level rand is safe for concurrent singleflight groups
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
