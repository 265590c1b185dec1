package core

import "strings"

// PlaceholderBullet is the bare bullet a blank form line is pre-filled with.
const PlaceholderBullet = "・"

// Normalize trims every line of raw, drops blank and placeholder-only lines
// and rejoins the rest with '\n'. It returns nil when raw is nil or no line
// survives.
func Normalize(raw *string) *string {
	if raw == nil {
		return nil
	}
	lines := strings.Split(*raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == PlaceholderBullet {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil
	}
	out := strings.Join(kept, "\n")
	return &out
}

// NormalizeString is Normalize for a plain string; empty input yields nil.
func NormalizeString(raw string) *string {
	return Normalize(&raw)
}

// ExtractItems splits text into its trimmed, non-blank lines in order of
// appearance. nil text yields an empty slice.
func ExtractItems(text *string) []string {
	if text == nil {
		return []string{}
	}
	items := []string{}
	for _, line := range strings.Split(*text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
