package app

import (
	"context"
	"errors"
	"sort"

	"quiz-leaderboard-service/internal/domain"
)

// NationalAllTime ranks users by their single highest-ever score. Ties keep
// the first-seen entry and insertion order. A limit <= 0 means unbounded.
func (s *LeaderboardService) NationalAllTime(ctx context.Context, limit int) ([]domain.RankedUser, error) {
	entries, err := s.national.ListInWindow(ctx, nil)
	if err != nil {
		return nil, err
	}
	return rankUsers(entries, limit), nil
}

// NationalByDate ranks users by best score among entries created on the given
// UTC day (ISO YYYY-MM-DD).
func (s *LeaderboardService) NationalByDate(ctx context.Context, date string, limit int) ([]domain.RankedUser, error) {
	window, err := domain.ParseDayWindow(date)
	if err != nil {
		return nil, err
	}
	entries, err := s.national.ListInWindow(ctx, &window)
	if err != nil {
		return nil, err
	}
	return rankUsers(entries, limit), nil
}

// UserEntries returns a user's own submissions, most recent first.
func (s *LeaderboardService) UserEntries(ctx context.Context, userID string, limit int) ([]domain.NationalEntry, error) {
	return s.national.ListByUser(ctx, userID, limit)
}

// SchoolAllTime ranks schools by the lifetime sum of their daily aggregates.
// UserCount sums the per-day counts, so a student active on several days
// contributes once per day; that is the documented semantics of the daily
// bucket model.
func (s *LeaderboardService) SchoolAllTime(ctx context.Context, limit int) ([]domain.RankedSchool, error) {
	entries, err := s.school.ListInWindow(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.rankSchools(ctx, entries, limit)
}

// SchoolByDate ranks schools for a single UTC day. Given the one-row-per-day
// invariant this yields at most one aggregate per school.
func (s *LeaderboardService) SchoolByDate(ctx context.Context, date string, limit int) ([]domain.RankedSchool, error) {
	window, err := domain.ParseDayWindow(date)
	if err != nil {
		return nil, err
	}
	entries, err := s.school.ListInWindow(ctx, &window)
	if err != nil {
		return nil, err
	}
	return s.rankSchools(ctx, entries, limit)
}

func rankUsers(entries []domain.NationalEntry, limit int) []domain.RankedUser {
	best := make(map[string]int)
	ranked := make([]domain.RankedUser, 0, len(entries))
	for _, entry := range entries {
		idx, seen := best[entry.UserID]
		if !seen {
			best[entry.UserID] = len(ranked)
			ranked = append(ranked, domain.RankedUser{
				UserID:    entry.UserID,
				Username:  entry.Username,
				Score:     entry.Score,
				CreatedAt: entry.CreatedAt,
				UpdatedAt: entry.UpdatedAt,
			})
			continue
		}
		// Strictly greater only: on a tie the first-seen entry wins.
		if entry.Score > ranked[idx].Score {
			ranked[idx].Score = entry.Score
			ranked[idx].CreatedAt = entry.CreatedAt
			ranked[idx].UpdatedAt = entry.UpdatedAt
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return truncate(ranked, limit)
}

// rankSchools sums daily aggregates per school and decorates each row with
// the directory county. A school missing from the directory still ranks,
// with an empty county; any other directory failure aborts the query.
func (s *LeaderboardService) rankSchools(ctx context.Context, entries []domain.SchoolDailyEntry, limit int) ([]domain.RankedSchool, error) {
	index := make(map[string]int)
	ranked := make([]domain.RankedSchool, 0, len(entries))
	for _, entry := range entries {
		idx, seen := index[entry.SchoolID]
		if !seen {
			index[entry.SchoolID] = len(ranked)
			ranked = append(ranked, domain.RankedSchool{
				SchoolID:   entry.SchoolID,
				SchoolName: entry.SchoolName,
				TotalScore: entry.TotalScore,
				UserCount:  entry.UserCount,
			})
			continue
		}
		ranked[idx].TotalScore += entry.TotalScore
		ranked[idx].UserCount += entry.UserCount
	}

	for i := range ranked {
		meta, err := s.schools.Lookup(ctx, ranked[i].SchoolID)
		if err != nil {
			if errors.Is(err, domain.ErrSchoolNotFound) {
				continue
			}
			return nil, err
		}
		ranked[i].County = meta.County
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	return truncate(ranked, limit), nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
