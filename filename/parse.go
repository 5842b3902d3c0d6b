package filename

import (
	"fmt"
	"path"
	"strings"
)

// ParsedName holds the canonical fields recovered from either filename
// grammar. Date and Time keep the exact segment text; no reformatting
// happens at this layer.
type ParsedName struct {
	CameraID string
	Date     string
	Time     string
	Sequence string
}

// grammar identifies which of the two historical encodings applies.
type grammar int

const (
	// grammarUnderscore is the current form:
	// camera_date_time_sequence.ext, at least 4 underscore segments.
	grammarUnderscore grammar = iota

	// grammarDash is the legacy form: camera-YYYY-MM-DD-HH-MM-seq.ext,
	// camera id is everything before the first dash.
	grammarDash
)

// classify picks the grammar for an identifier. The dash form is only
// assumed when no underscore is present and the name carries the
// literal "cctv" marker; everything else parses as the underscore form.
func classify(name string) grammar {
	if !strings.Contains(name, "_") && strings.Contains(name, "cctv") {
		return grammarDash
	}
	return grammarUnderscore
}

// stripPrefix keeps only the last path segment of a URL-style
// identifier, then drops the extension from the given trailing segment.
func stripPrefix(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func stripExt(segment string) string {
	return strings.TrimSuffix(segment, path.Ext(segment))
}

// Parse recovers camera id, date, time and sequence from an identifier
// in either supported grammar. URL prefixes are stripped first. An
// identifier with fewer segments than its grammar requires fails with
// a descriptive error; callers treat that as a per-item failure.
func Parse(name string) (*ParsedName, error) {
	base := stripPrefix(name)

	switch classify(base) {
	case grammarDash:
		return parseDash(base)
	default:
		return parseUnderscore(base)
	}
}

func parseUnderscore(base string) (*ParsedName, error) {
	parts := strings.Split(base, "_")
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: %q has %d underscore segments, need at least 4",
			ErrMalformedName, base, len(parts))
	}

	return &ParsedName{
		CameraID: parts[0],
		Date:     parts[1],
		Time:     parts[2],
		Sequence: stripExt(strings.Join(parts[3:], "_")),
	}, nil
}

func parseDash(base string) (*ParsedName, error) {
	// camera + 3 date segments + 2 time segments + sequence
	parts := strings.Split(base, "-")
	if len(parts) < 7 {
		return nil, fmt.Errorf("%w: %q has %d dash segments, need at least 7",
			ErrMalformedName, base, len(parts))
	}

	return &ParsedName{
		CameraID: parts[0],
		Date:     strings.Join(parts[1:4], "-"),
		Time:     strings.Join(parts[4:6], "-"),
		Sequence: stripExt(strings.Join(parts[6:], "-")),
	}, nil
}
