package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	postcodeRe = regexp.MustCompile(`(\d{4})$`)
	areaRe     = regexp.MustCompile(`(\d+\.?\d*)`)
)

// ParsedAddress is a council address broken into its display components.
type ParsedAddress struct {
	Street   string
	Locality string
	Postcode string
}

// ParseAucklandAddress splits Auckland's multi-line formatted address into
// street, locality, and postcode. The format is one component per line, e.g.
// "7 Ward Street\rPukekohe\rAuckland 2120" where the last line may carry a
// four-digit postcode.
func ParseAucklandAddress(s string) ParsedAddress {
	var parts []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' }) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	var out ParsedAddress
	if len(parts) == 0 {
		return out
	}

	out.Street = parts[0]
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if m := postcodeRe.FindStringIndex(last); m != nil {
			out.Postcode = last[m[0]:m[1]]
			out.Locality = strings.TrimSpace(last[:m[0]])
		} else {
			out.Locality = last
		}
	}
	return out
}

// ParseAreaLabel extracts the numeric value from an area label like
// "1234 m2". Returns nil when no number is present.
func ParseAreaLabel(label string) *float64 {
	m := areaRe.FindString(label)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}
