package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-leaderboard-service/internal/domain"
	"quiz-leaderboard-service/internal/infra/memory"
)

func TestSchoolMetadataCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	directory := &countingDirectory{
		inner: memory.NewStaticSchoolDirectory(map[string]domain.School{
			"school-1": {ID: "school-1", Name: "Oak High", County: "Kildare", Country: "Ireland"},
		}),
	}
	cache := NewSchoolMetadataCache(client, directory, time.Minute)

	school, err := cache.Lookup(context.Background(), "school-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if school.Name != "Oak High" || school.County != "Kildare" {
		t.Fatalf("unexpected school: %+v", school)
	}
	if directory.calls != 1 {
		t.Fatalf("expected directory called once, got %d", directory.calls)
	}
	if !mr.Exists("school:school-1:meta") {
		t.Fatalf("expected redis hash to be set")
	}

	// Second call should hit redis, directory not incremented.
	cached, err := cache.Lookup(context.Background(), "school-1")
	if err != nil {
		t.Fatalf("lookup 2: %v", err)
	}
	if directory.calls != 1 {
		t.Fatalf("expected cache hit, directory calls=%d", directory.calls)
	}
	if cached != school {
		t.Fatalf("expected identical metadata, got %+v", cached)
	}
}

func TestSchoolMetadataCacheNotFoundPassesThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	directory := &countingDirectory{inner: memory.NewStaticSchoolDirectory(nil)}
	cache := NewSchoolMetadataCache(newClient(mr), directory, time.Minute)

	if _, err := cache.Lookup(context.Background(), "school-ghost"); !errors.Is(err, domain.ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}
	if mr.Exists("school:school-ghost:meta") {
		t.Fatalf("not-found lookups must not be cached")
	}
}

func TestSchoolMetadataCacheConcurrentFill(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	schools := make(map[string]domain.School)
	for _, id := range []string{"school-1", "school-2", "school-3", "school-4"} {
		schools[id] = domain.School{ID: id, Name: "School " + id, County: "Kildare"}
	}
	cache := NewSchoolMetadataCache(newClient(mr), memory.NewStaticSchoolDirectory(schools), time.Minute)

	// Distinct keys fill through separate singleflight groups at once, so the
	// jittered-TTL path runs in parallel.
	var wg sync.WaitGroup
	errs := make(chan error, 10*len(schools))
	for i := 0; i < 10; i++ {
		for id := range schools {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				school, err := cache.Lookup(context.Background(), id)
				if err != nil {
					errs <- err
					return
				}
				if school.ID != id {
					errs <- errors.New("wrong school for " + id)
				}
			}(id)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent lookup: %v", err)
	}
	for id := range schools {
		if !mr.Exists("school:" + id + ":meta") {
			t.Fatalf("expected redis hash for %s", id)
		}
	}
}

type countingDirectory struct {
	inner *memory.StaticSchoolDirectory
	calls int
}

func (d *countingDirectory) Lookup(ctx context.Context, schoolID string) (domain.School, error) {
	d.calls++
	return d.inner.Lookup(ctx, schoolID)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
