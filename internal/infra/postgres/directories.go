package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-leaderboard-service/internal/domain"
)

// SchoolDirectory resolves school metadata from the schools table.
type SchoolDirectory struct {
	pool *pgxpool.Pool
}

func NewSchoolDirectory(pool *pgxpool.Pool) *SchoolDirectory {
	return &SchoolDirectory{pool: pool}
}

func (d *SchoolDirectory) Lookup(ctx context.Context, schoolID string) (domain.School, error) {
	var school domain.School
	err := d.pool.QueryRow(ctx,
		`SELECT id, school_name, county, country FROM schools WHERE id=$1`, schoolID).
		Scan(&school.ID, &school.Name, &school.County, &school.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.School{}, domain.ErrSchoolNotFound
		}
		return domain.School{}, fmt.Errorf("postgres.SchoolDirectory.Lookup: %w", err)
	}
	return school, nil
}

// UserDirectory resolves user profiles from the users table.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) Lookup(ctx context.Context, userID string) (domain.UserProfile, error) {
	var profile domain.UserProfile
	err := d.pool.QueryRow(ctx,
		`SELECT id, username, COALESCE(school_id, '') FROM users WHERE id=$1`, userID).
		Scan(&profile.UserID, &profile.Username, &profile.SchoolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, domain.ErrUserNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("postgres.UserDirectory.Lookup: %w", err)
	}
	return profile, nil
}
