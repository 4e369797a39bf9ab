package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quiz-leaderboard-service/internal/domain"
)

// LeaderboardService contains the leaderboard use cases: score submission,
// ranking queries, and admin corrections.
type LeaderboardService struct {
	national NationalLedger
	school   SchoolDailyStore
	schools  SchoolDirectory
	users    UserDirectory
	logger   *slog.Logger
	now      func() time.Time
}

func NewLeaderboardService(
	national NationalLedger,
	school SchoolDailyStore,
	schools SchoolDirectory,
	users UserDirectory,
	logger *slog.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		national: national,
		school:   school,
		schools:  schools,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock; test-only.
func (s *LeaderboardService) WithClock(now func() time.Time) *LeaderboardService {
	s.now = now
	return s
}

// Submit runs the two-phase score submission. Phase 1 (national ledger insert)
// is mandatory; phase 2 (school daily upsert) is best-effort and only runs
// when an effective school resolves. There is no rollback: a committed
// national entry is returned even when the school phase fails, and every
// failure is collected into the result.
func (s *LeaderboardService) Submit(ctx context.Context, submission domain.ScoreSubmission) (domain.SubmissionResult, error) {
	if err := validateSubmission(submission); err != nil {
		return domain.SubmissionResult{}, err
	}

	result := domain.SubmissionResult{Errors: []string{}}

	entry, err := s.createNationalEntry(ctx, submission)
	if err != nil {
		s.logger.Error("national entry insert failed", "user_id", submission.UserID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("national entry: %v", err))
		return result, nil
	}
	result.NationalEntry = entry

	schoolID := s.effectiveSchoolID(ctx, submission, &result)
	if schoolID != "" {
		s.attributeToSchool(ctx, schoolID, submission.Score, &result)
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

// CreateEntry is the legacy single-phase path: a national ledger insert with
// no school attribution.
func (s *LeaderboardService) CreateEntry(ctx context.Context, submission domain.ScoreSubmission) (*domain.NationalEntry, error) {
	if err := validateSubmission(submission); err != nil {
		return nil, err
	}
	return s.createNationalEntry(ctx, submission)
}

func (s *LeaderboardService) createNationalEntry(ctx context.Context, submission domain.ScoreSubmission) (*domain.NationalEntry, error) {
	now := s.now().UTC()
	entry := &domain.NationalEntry{
		ID:        uuid.NewString(),
		UserID:    submission.UserID,
		Username:  submission.Username,
		Score:     submission.Score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.national.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// effectiveSchoolID prefers the submitter's profile affiliation over the
// school carried in the submission. An unknown user is not an error; a
// directory failure is recorded but still falls back to the submitted value.
func (s *LeaderboardService) effectiveSchoolID(ctx context.Context, submission domain.ScoreSubmission, result *domain.SubmissionResult) string {
	profile, err := s.users.Lookup(ctx, submission.UserID)
	switch {
	case err == nil && profile.SchoolID != "":
		return profile.SchoolID
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		s.logger.Warn("user directory lookup failed", "user_id", submission.UserID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("user lookup: %v", err))
	}
	return submission.SchoolID
}

func (s *LeaderboardService) attributeToSchool(ctx context.Context, schoolID string, score int64, result *domain.SubmissionResult) {
	meta, err := s.schools.Lookup(ctx, schoolID)
	if err != nil {
		if errors.Is(err, domain.ErrSchoolNotFound) {
			s.logger.Warn("submission references unknown school", "school_id", schoolID)
			result.Errors = append(result.Errors, fmt.Sprintf("school %s not found", schoolID))
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("school lookup: %v", err))
		return
	}

	entry, err := s.school.UpsertIncrement(ctx, meta.ID, meta.Name, score)
	if err != nil {
		s.logger.Error("school daily upsert failed", "school_id", meta.ID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("school entry: %v", err))
		return
	}
	result.SchoolEntry = entry
}

func validateSubmission(submission domain.ScoreSubmission) error {
	if submission.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidSubmission)
	}
	if submission.Username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidSubmission)
	}
	if submission.Score < 0 {
		return fmt.Errorf("%w: score must be >= 0", domain.ErrInvalidSubmission)
	}
	return nil
}
