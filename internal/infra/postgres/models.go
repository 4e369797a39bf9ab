package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-leaderboard-service/internal/domain"
)

type nationalEntryModel struct {
	bun.BaseModel `bun:"table:national_entries,alias:ne"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull"`
	Username  string    `bun:"username,notnull"`
	Score     int64     `bun:"score,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (m *nationalEntryModel) toDomain() *domain.NationalEntry {
	return &domain.NationalEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		Score:     m.Score,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type schoolDailyEntryModel struct {
	bun.BaseModel `bun:"table:school_daily_entries,alias:sde"`

	ID         string    `bun:"id,notnull,type:uuid"`
	SchoolID   string    `bun:"school_id,pk"`
	SchoolName string    `bun:"school_name,notnull"`
	TotalScore int64     `bun:"total_score,notnull"`
	UserCount  int64     `bun:"user_count,notnull"`
	Day        time.Time `bun:"day,pk,type:date"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func (m *schoolDailyEntryModel) toDomain() *domain.SchoolDailyEntry {
	return &domain.SchoolDailyEntry{
		ID:         m.ID,
		SchoolID:   m.SchoolID,
		SchoolName: m.SchoolName,
		TotalScore: m.TotalScore,
		UserCount:  m.UserCount,
		Day:        m.Day.UTC(),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}
