package app

import (
	"context"
	"fmt"

	"quiz-leaderboard-service/internal/domain"
)

// CorrectedEntry is the outcome of an admin bonus correction; exactly one of
// National/School is set, matching Type.
type CorrectedEntry struct {
	Type     domain.EntryType         `json:"entry_type"`
	National *domain.NationalEntry    `json:"national_entry,omitempty"`
	School   *domain.SchoolDailyEntry `json:"school_entry,omitempty"`
}

// AddBonus applies an additive point correction to a ledger or aggregate
// entry. The caller's admin role is checked at the transport boundary; the
// entry type is re-validated here regardless.
func (s *LeaderboardService) AddBonus(ctx context.Context, entryID string, entryType domain.EntryType, bonusPoints int64) (CorrectedEntry, error) {
	switch entryType {
	case domain.EntryTypeNational:
		entry, err := s.national.AddPoints(ctx, entryID, bonusPoints)
		if err != nil {
			return CorrectedEntry{}, err
		}
		s.logger.Info("bonus points applied", "entry_type", entryType, "entry_id", entryID, "points", bonusPoints)
		return CorrectedEntry{Type: entryType, National: entry}, nil
	case domain.EntryTypeSchool:
		entry, err := s.school.AddPoints(ctx, entryID, bonusPoints)
		if err != nil {
			return CorrectedEntry{}, err
		}
		s.logger.Info("bonus points applied", "entry_type", entryType, "entry_id", entryID, "points", bonusPoints)
		return CorrectedEntry{Type: entryType, School: entry}, nil
	default:
		return CorrectedEntry{}, fmt.Errorf("%w: %v", domain.ErrInvalidEntryType, entryType)
	}
}

// DeleteEntry removes a ledger or aggregate entry, verifying existence first
// so an absent id reports not-found rather than a silent no-op.
func (s *LeaderboardService) DeleteEntry(ctx context.Context, entryID string, entryType domain.EntryType) (string, error) {
	switch entryType {
	case domain.EntryTypeNational:
		if _, err := s.national.Get(ctx, entryID); err != nil {
			return "", err
		}
		if err := s.national.Delete(ctx, entryID); err != nil {
			return "", err
		}
	case domain.EntryTypeSchool:
		if _, err := s.school.Get(ctx, entryID); err != nil {
			return "", err
		}
		if err := s.school.Delete(ctx, entryID); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidEntryType, entryType)
	}
	s.logger.Info("entry deleted", "entry_type", entryType, "entry_id", entryID)
	return entryID, nil
}
