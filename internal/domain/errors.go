package domain

import "errors"

var (
	// ErrEntryNotFound is returned when a referenced ledger or aggregate entry is absent.
	ErrEntryNotFound = errors.New("leaderboard entry not found")
	// ErrSchoolNotFound indicates the school directory has no such school.
	ErrSchoolNotFound = errors.New("school not found")
	// ErrUserNotFound indicates the user directory has no such user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidEntryType is returned when an entry type is neither national nor school.
	ErrInvalidEntryType = errors.New("invalid entry type")
	// ErrInvalidDate is returned for dates that do not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidLimit is returned for limits that are not positive integers.
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	// ErrInvalidSubmission is returned when a score submission is missing
	// required fields or carries a negative score.
	ErrInvalidSubmission = errors.New("invalid score submission")
)
