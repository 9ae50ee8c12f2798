package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "html code block",
			input:    "```html\n<section id=\"education\"></section>\n```",
			expected: `<section id="education"></section>`,
		},
		{
			name:     "generic code block",
			input:    "```\n<header></header>\n```",
			expected: "<header></header>",
		},
		{
			name:     "fence without language keeps first line",
			input:    "```<header>\n</header>```",
			expected: "<header>\n</header>",
		},
		{
			name:     "plain html",
			input:    "  <section></section>\n",
			expected: "<section></section>",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanCodeBlock(tt.input))
		})
	}
}
