package domain

import (
	"fmt"
	"strings"
	"time"
)

const gitlabTimeLayout = "2006-01-02T15:04:05"

// ParseTimestamp reads a GitLab timestamp as UTC from its first 23
// characters (seconds plus milliseconds). Values carrying a zone offset
// that do not fit that shape are parsed as RFC3339.
func ParseTimestamp(s string) (time.Time, error) {
	head := s
	if len(head) > 23 {
		head = head[:23]
	}
	head = strings.TrimSuffix(head, "Z")

	t, err := time.ParseInLocation(gitlabTimeLayout, head, time.UTC)
	if err == nil {
		return t, nil
	}

	if t, rerr := time.Parse(time.RFC3339Nano, s); rerr == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
}
