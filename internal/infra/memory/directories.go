package memory

import (
	"context"

	"quiz-leaderboard-service/internal/domain"
)

// StaticSchoolDirectory is a map-backed school directory (useful for tests/demos).
type StaticSchoolDirectory struct {
	schools map[string]domain.School
}

func NewStaticSchoolDirectory(schools map[string]domain.School) *StaticSchoolDirectory {
	return &StaticSchoolDirectory{schools: schools}
}

func (d *StaticSchoolDirectory) Lookup(_ context.Context, schoolID string) (domain.School, error) {
	if school, ok := d.schools[schoolID]; ok {
		return school, nil
	}
	return domain.School{}, domain.ErrSchoolNotFound
}

// StaticUserDirectory is a map-backed user directory (useful for tests/demos).
type StaticUserDirectory struct {
	users map[string]domain.UserProfile
}

func NewStaticUserDirectory(users map[string]domain.UserProfile) *StaticUserDirectory {
	return &StaticUserDirectory{users: users}
}

func (d *StaticUserDirectory) Lookup(_ context.Context, userID string) (domain.UserProfile, error) {
	if profile, ok := d.users[userID]; ok {
		return profile, nil
	}
	return domain.UserProfile{}, domain.ErrUserNotFound
}
