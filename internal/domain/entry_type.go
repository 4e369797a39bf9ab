package domain

import (
	"encoding/json"
	"fmt"
)

// EntryType discriminates the two correctable entry kinds. Keeping it a closed
// type forces every consumer to switch over both cases instead of comparing
// raw strings.
type EntryType int

const (
	EntryTypeNational EntryType = iota
	EntryTypeSchool
)

// ParseEntryType validates the wire representation of an entry type.
func ParseEntryType(raw string) (EntryType, error) {
	switch raw {
	case "national":
		return EntryTypeNational, nil
	case "school":
		return EntryTypeSchool, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntryType, raw)
	}
}

// MarshalJSON writes the same wire names ParseEntryType accepts.
func (t EntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *EntryType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseEntryType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t EntryType) String() string {
	switch t {
	case EntryTypeNational:
		return "national"
	case EntryTypeSchool:
		return "school"
	default:
		return "unknown"
	}
}
