package domain

import "time"

// ScoreSubmission is the scoring signal produced when a user completes a quiz.
// It is an input shape only; nothing persists it as-is.
type ScoreSubmission struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
	SchoolID string `json:"school_id,omitempty"`
}

// NationalEntry is one row in the national ledger: one row per submission.
// Only an admin bonus correction mutates it after creation.
type NationalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchoolDailyEntry aggregates every submission attributed to a school on one
// UTC calendar day. At most one row exists per (SchoolID, Day).
type SchoolDailyEntry struct {
	ID         string    `json:"id"`
	SchoolID   string    `json:"school_id"`
	SchoolName string    `json:"school_name"`
	TotalScore int64     `json:"total_score"`
	UserCount  int64     `json:"user_count"`
	Day        time.Time `json:"day"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// School is directory metadata, owned by the school directory and read-only here.
type School struct {
	ID      string `json:"school_id"`
	Name    string `json:"school_name"`
	County  string `json:"county"`
	Country string `json:"country"`
}

// UserProfile is the slice of user-directory data the leaderboard cares about.
type UserProfile struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	SchoolID string `json:"school_id,omitempty"`
}

// RankedUser is a national ranking row: a user's single best score.
type RankedUser struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RankedSchool is a school ranking row, decorated with the directory county.
type RankedSchool struct {
	SchoolID   string `json:"school_id"`
	SchoolName string `json:"school_name"`
	County     string `json:"county,omitempty"`
	TotalScore int64  `json:"total_score"`
	UserCount  int64  `json:"user_count"`
}

// SubmissionResult reports the outcome of a score submission. The orchestration
// is best-effort: a created national entry is returned even when the school
// phase failed, and every failure is collected into Errors.
type SubmissionResult struct {
	NationalEntry *NationalEntry    `json:"national_entry"`
	SchoolEntry   *SchoolDailyEntry `json:"school_entry"`
	Success       bool              `json:"success"`
	Errors        []string          `json:"errors"`
}
