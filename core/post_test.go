package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostInput(t *testing.T) {
	title, content, err := NormalizePostInput("  Hi  ", "\tHello world\n")
	require.NoError(t, err)
	assert.Equal(t, "Hi", title)
	assert.Equal(t, "Hello world", content)
}

func TestNormalizePostInputRejects(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		reason  string
	}{
		{"empty title", "   ", "body", "title and content are required"},
		{"empty content", "title", "", "title and content are required"},
		{"long title", strings.Repeat("a", MaxTitleLength+1), "body", "title too long (max 200 chars)"},
		{"long content", "title", strings.Repeat("b", MaxContentLength+1), "content too long (max 5000 chars)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NormalizePostInput(tt.title, tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.reason, validationErr.Reason)
		})
	}
}

func TestNormalizePostInputLimitsCountCharacters(t *testing.T) {
	title := strings.Repeat("é", MaxTitleLength)
	content := "  " + strings.Repeat("x", MaxContentLength) + "  "

	gotTitle, gotContent, err := NormalizePostInput(title, content)
	require.NoError(t, err)
	assert.Equal(t, title, gotTitle)
	assert.Len(t, gotContent, MaxContentLength)
}
