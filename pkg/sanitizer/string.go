package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading/trailing whitespace and collapses internal
// whitespace runs to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

var (
	namePipeline  = Pipeline{TrimAndNormalize}
	notesPipeline = Pipeline{TrimAndNormalize}
	emailPipeline = Pipeline{strings.TrimSpace, strings.ToLower}
)

func NormalizeName(name string) string {
	return namePipeline.Apply(name)
}

func NormalizeNotes(notes string) string {
	return notesPipeline.Apply(notes)
}

func NormalizeEmail(email string) string {
	return emailPipeline.Apply(email)
}
