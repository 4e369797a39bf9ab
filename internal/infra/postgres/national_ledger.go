package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-leaderboard-service/internal/domain"
)

// NationalLedger is the bun-backed implementation of app.NationalLedger.
type NationalLedger struct {
	db    *bun.DB
	clock func() time.Time
}

func NewNationalLedger(db *bun.DB) *NationalLedger {
	return &NationalLedger{db: db, clock: time.Now}
}

func (l *NationalLedger) Insert(ctx context.Context, entry *domain.NationalEntry) error {
	model := &nationalEntryModel{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Username:  entry.Username,
		Score:     entry.Score,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
	if _, err := l.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("postgres.NationalLedger.Insert: %w", err)
	}
	return nil
}

func (l *NationalLedger) ListInWindow(ctx context.Context, window *domain.DayWindow) ([]domain.NationalEntry, error) {
	var models []nationalEntryModel
	q := l.db.NewSelect().Model(&models)
	if window != nil {
		q = q.Where("created_at BETWEEN ? AND ?", window.Start, window.End)
	}
	// insertion order keeps ranking tie-breaks stable
	if err := q.Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgres.NationalLedger.ListInWindow: %w", err)
	}
	return toDomainEntries(models), nil
}

func (l *NationalLedger) ListByUser(ctx context.Context, userID string, limit int) ([]domain.NationalEntry, error) {
	var models []nationalEntryModel
	q := l.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgres.NationalLedger.ListByUser: %w", err)
	}
	return toDomainEntries(models), nil
}

func (l *NationalLedger) Get(ctx context.Context, id string) (*domain.NationalEntry, error) {
	model := new(nationalEntryModel)
	err := l.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("postgres.NationalLedger.Get: %w", err)
	}
	return model.toDomain(), nil
}

func (l *NationalLedger) AddPoints(ctx context.Context, id string, delta int64) (*domain.NationalEntry, error) {
	model := new(nationalEntryModel)
	res, err := l.db.NewUpdate().
		Model(model).
		Set("score = ne.score + ?", delta).
		Set("updated_at = ?", l.clock().UTC()).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres.NationalLedger.AddPoints: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, domain.ErrEntryNotFound
	}
	return model.toDomain(), nil
}

func (l *NationalLedger) Delete(ctx context.Context, id string) error {
	res, err := l.db.NewDelete().
		Model((*nationalEntryModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("postgres.NationalLedger.Delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func toDomainEntries(models []nationalEntryModel) []domain.NationalEntry {
	out := make([]domain.NationalEntry, len(models))
	for i := range models {
		out[i] = *models[i].toDomain()
	}
	return out
}
