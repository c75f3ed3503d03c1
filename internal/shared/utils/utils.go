package utils

import (
	"strings"

	"github.com/google/uuid"
)

func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// IsValidUUID checks canonical UUID format.
func IsValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil && len(u) == 36
}

// NormalizeTags lower-cases, trims and de-duplicates a tag list,
// preserving first-seen order. Empty entries are dropped.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitCSV splits a comma-separated query value into trimmed parts.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
