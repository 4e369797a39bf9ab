package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quiz-leaderboard-service/internal/domain"
)

// SchoolDailyStore is the bun-backed implementation of app.SchoolDailyStore.
// The (school_id, day) primary key plus the ON CONFLICT increment make the
// upsert a single atomic statement, so concurrent submissions for the same
// school and day never create a second row or lose an increment.
type SchoolDailyStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewSchoolDailyStore(db *bun.DB) *SchoolDailyStore {
	return &SchoolDailyStore{db: db, clock: time.Now}
}

func (s *SchoolDailyStore) UpsertIncrement(ctx context.Context, schoolID, schoolName string, increment int64) (*domain.SchoolDailyEntry, error) {
	now := s.clock().UTC()
	model := &schoolDailyEntryModel{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		SchoolName: schoolName,
		TotalScore: increment,
		UserCount:  1,
		Day:        domain.DayWindowFor(now).Day(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (school_id, day) DO UPDATE").
		Set("total_score = sde.total_score + EXCLUDED.total_score").
		Set("user_count = sde.user_count + 1").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres.SchoolDailyStore.UpsertIncrement: %w", err)
	}
	return model.toDomain(), nil
}

func (s *SchoolDailyStore) ListInWindow(ctx context.Context, window *domain.DayWindow) ([]domain.SchoolDailyEntry, error) {
	var models []schoolDailyEntryModel
	q := s.db.NewSelect().Model(&models)
	if window != nil {
		// The window always covers exactly one UTC day, and day is a date
		// column; equality on the anchor avoids timestamp coercion.
		q = q.Where("day = ?", window.Day())
	}
	if err := q.Order("day ASC", "school_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgres.SchoolDailyStore.ListInWindow: %w", err)
	}
	out := make([]domain.SchoolDailyEntry, len(models))
	for i := range models {
		out[i] = *models[i].toDomain()
	}
	return out, nil
}

func (s *SchoolDailyStore) Get(ctx context.Context, id string) (*domain.SchoolDailyEntry, error) {
	model := new(schoolDailyEntryModel)
	err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("postgres.SchoolDailyStore.Get: %w", err)
	}
	return model.toDomain(), nil
}

func (s *SchoolDailyStore) AddPoints(ctx context.Context, id string, delta int64) (*domain.SchoolDailyEntry, error) {
	model := new(schoolDailyEntryModel)
	res, err := s.db.NewUpdate().
		Model(model).
		Set("total_score = sde.total_score + ?", delta).
		Set("updated_at = ?", s.clock().UTC()).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres.SchoolDailyStore.AddPoints: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, domain.ErrEntryNotFound
	}
	return model.toDomain(), nil
}

func (s *SchoolDailyStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().
		Model((*schoolDailyEntryModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("postgres.SchoolDailyStore.Delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
