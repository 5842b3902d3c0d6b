package filename

import (
	"fmt"
	"strings"
	"time"
)

// APIDatetimeToRFC3339 joins the metadata API's separate date and time
// fields into the canonical form the vector store's datetime index
// parses. This is a byte-level contract: exact concatenation with "T"
// and "Z", no reformatting.
func APIDatetimeToRFC3339(date, tod string) string {
	return date + "T" + tod + "Z"
}

// NormalizeTime converts a filename time segment to HH:MM:SS. Filenames
// use dashes instead of colons and may omit the seconds; descriptor
// time fields pass through unchanged.
func NormalizeTime(tod string) string {
	tod = strings.ReplaceAll(tod, "-", ":")
	if strings.Count(tod, ":") == 1 {
		tod += ":00"
	}
	return tod
}

// ParseRFC3339 parses a canonical datetime string back into its
// components for building range filters. Malformed input is surfaced
// as ErrBadDatetime so the search layer can class it as a bad request.
func ParseRFC3339(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDatetime, value)
	}
	return parsed.UTC(), nil
}

// FormatRFC3339 re-serializes a parsed datetime. For any value produced
// by ParseRFC3339 from a canonical string, the round trip is identity.
func FormatRFC3339(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}
