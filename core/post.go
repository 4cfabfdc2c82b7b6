package core

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength   = 200
	MaxContentLength = 5000
)

// NormalizePostInput trims title and content and checks them against the
// length ceilings. Lengths are counted in characters after trimming.
func NormalizePostInput(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" || content == "" {
		return "", "", &ValidationError{Reason: "title and content are required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", "", &ValidationError{Reason: "title too long (max 200 chars)"}
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", "", &ValidationError{Reason: "content too long (max 5000 chars)"}
	}

	return title, content, nil
}
