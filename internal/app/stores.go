package app

import (
	"context"

	"quiz-leaderboard-service/internal/domain"
)

// NationalLedger is the append-only store of score submissions.
// ListInWindow with a nil window means all time; implementations must return
// rows in insertion order so ranking tie-breaks stay stable.
type NationalLedger interface {
	Insert(ctx context.Context, entry *domain.NationalEntry) error
	ListInWindow(ctx context.Context, window *domain.DayWindow) ([]domain.NationalEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.NationalEntry, error)
	Get(ctx context.Context, id string) (*domain.NationalEntry, error)
	AddPoints(ctx context.Context, id string, delta int64) (*domain.NationalEntry, error)
	Delete(ctx context.Context, id string) error
}

// SchoolDailyStore keeps one row per (school, UTC day). UpsertIncrement must
// be a single atomic insert-or-increment; concurrent submissions for the same
// school and day compose without external locking.
type SchoolDailyStore interface {
	UpsertIncrement(ctx context.Context, schoolID, schoolName string, increment int64) (*domain.SchoolDailyEntry, error)
	ListInWindow(ctx context.Context, window *domain.DayWindow) ([]domain.SchoolDailyEntry, error)
	Get(ctx context.Context, id string) (*domain.SchoolDailyEntry, error)
	AddPoints(ctx context.Context, id string, delta int64) (*domain.SchoolDailyEntry, error)
	Delete(ctx context.Context, id string) error
}

// SchoolDirectory resolves school metadata (external collaborator).
type SchoolDirectory interface {
	Lookup(ctx context.Context, schoolID string) (domain.School, error)
}

// UserDirectory resolves user profiles (external collaborator).
type UserDirectory interface {
	Lookup(ctx context.Context, userID string) (domain.UserProfile, error)
}
