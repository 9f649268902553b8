package sortname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "The at beginning",
			input:    "The Hobbit",
			expected: "Hobbit, The",
		},
		{
			name:     "A at beginning",
			input:    "A Wizard of Earthsea",
			expected: "Wizard of Earthsea, A",
		},
		{
			name:     "An at beginning",
			input:    "An Instance of the Fingerpost",
			expected: "Instance of the Fingerpost, An",
		},
		{
			name:     "keeps article case",
			input:    "THE HOBBIT",
			expected: "HOBBIT, THE",
		},
		{
			name:     "no article",
			input:    "Lord of the Rings",
			expected: "Lord of the Rings",
		},
		{
			name:     "article is part of a word",
			input:    "Anathem",
			expected: "Anathem",
		},
		{
			name:     "article only",
			input:    "The",
			expected: "The",
		},
		{
			name:     "surrounding whitespace",
			input:    "  The Name of the Wind ",
			expected: "Name of the Wind, The",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForTitle(tt.input))
		})
	}
}
