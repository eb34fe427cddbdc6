package pipeline

import (
	"strings"
	"unicode"
)

// EligibilityCheck applies the pre-flight heuristic that filters out assets
// whose names cannot produce meaningful post content.
type EligibilityCheck struct {
	MinLength int
	DenyList  []string
}

// Check reports whether a display name is descriptive enough to process. A
// name passes when its trimmed length meets the minimum, at least half of its
// non-space runes are letters or digits, and it contains no deny-list token.
func (c EligibilityCheck) Check(displayName string) bool {
	name := strings.TrimSpace(displayName)
	if len([]rune(name)) < c.MinLength {
		return false
	}

	total := 0
	alnum := 0
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 || alnum*2 < total {
		return false
	}

	lowered := strings.ToLower(name)
	for _, token := range c.DenyList {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" && strings.Contains(lowered, token) {
			return false
		}
	}
	return true
}
