package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-leaderboard-service/internal/domain"
)

// SchoolDailyStore is an in-memory implementation of app.SchoolDailyStore.
// The single mutex makes the upsert atomic, matching the store-level
// guarantee the Postgres implementation gets from its unique constraint.
type SchoolDailyStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	entries []domain.SchoolDailyEntry
	byKey   map[string]int
	byID    map[string]int
}

func NewSchoolDailyStore() *SchoolDailyStore {
	return NewSchoolDailyStoreWithClock(time.Now)
}

// NewSchoolDailyStoreWithClock allows day-boundary tests to control "today".
func NewSchoolDailyStoreWithClock(clock func() time.Time) *SchoolDailyStore {
	return &SchoolDailyStore{
		clock: clock,
		byKey: make(map[string]int),
		byID:  make(map[string]int),
	}
}

func (s *SchoolDailyStore) UpsertIncrement(_ context.Context, schoolID, schoolName string, increment int64) (*domain.SchoolDailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	day := domain.DayWindowFor(now).Day()
	key := schoolID + "|" + day.Format("2006-01-02")

	if idx, ok := s.byKey[key]; ok {
		s.entries[idx].TotalScore += increment
		s.entries[idx].UserCount++
		s.entries[idx].UpdatedAt = now
		entry := s.entries[idx]
		return &entry, nil
	}

	entry := domain.SchoolDailyEntry{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		SchoolName: schoolName,
		TotalScore: increment,
		UserCount:  1,
		Day:        day,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.byKey[key] = len(s.entries)
	s.byID[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *SchoolDailyStore) ListInWindow(_ context.Context, window *domain.DayWindow) ([]domain.SchoolDailyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SchoolDailyEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if window == nil || window.Contains(entry.Day) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *SchoolDailyStore) Get(_ context.Context, id string) (*domain.SchoolDailyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	entry := s.entries[idx]
	return &entry, nil
}

func (s *SchoolDailyStore) AddPoints(_ context.Context, id string, delta int64) (*domain.SchoolDailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	s.entries[idx].TotalScore += delta
	s.entries[idx].UpdatedAt = s.clock().UTC()
	entry := s.entries[idx]
	return &entry, nil
}

func (s *SchoolDailyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	key := s.entries[idx].SchoolID + "|" + s.entries[idx].Day.Format("2006-01-02")
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	delete(s.byID, id)
	delete(s.byKey, key)
	// reindex the tail after the removal
	for i := idx; i < len(s.entries); i++ {
		s.byID[s.entries[i].ID] = i
		s.byKey[s.entries[i].SchoolID+"|"+s.entries[i].Day.Format("2006-01-02")] = i
	}
	return nil
}
