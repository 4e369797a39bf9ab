package memory

import (
	"context"
	"sync"
	"time"

	"quiz-leaderboard-service/internal/domain"
)

// NationalLedger is an in-memory implementation of app.NationalLedger,
// used when no Postgres is configured and throughout the tests.
type NationalLedger struct {
	clock func() time.Time

	mu      sync.RWMutex
	entries []domain.NationalEntry
}

func NewNationalLedger() *NationalLedger {
	return &NationalLedger{clock: time.Now}
}

// NewNationalLedgerWithClock allows deterministic timestamps in tests.
func NewNationalLedgerWithClock(clock func() time.Time) *NationalLedger {
	return &NationalLedger{clock: clock}
}

func (l *NationalLedger) Insert(_ context.Context, entry *domain.NationalEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *NationalLedger) ListInWindow(_ context.Context, window *domain.DayWindow) ([]domain.NationalEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.NationalEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		if window == nil || window.Contains(entry.CreatedAt) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (l *NationalLedger) ListByUser(_ context.Context, userID string, limit int) ([]domain.NationalEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.NationalEntry, 0)
	// newest first
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID != userID {
			continue
		}
		out = append(out, l.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (l *NationalLedger) Get(_ context.Context, id string) (*domain.NationalEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			entry := l.entries[i]
			return &entry, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (l *NationalLedger) AddPoints(_ context.Context, id string, delta int64) (*domain.NationalEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Score += delta
			l.entries[i].UpdatedAt = l.clock().UTC()
			entry := l.entries[i]
			return &entry, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (l *NationalLedger) Delete(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrEntryNotFound
}
