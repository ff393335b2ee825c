package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"accents stripped", "Café au Lait", "cafe-au-lait"},
		{"punctuation removed", "What's Next? Banks & Rates!", "whats-next-banks-rates"},
		{"joined punctuation deleted not hyphenated", "risk&reward", "riskreward"},
		{"collapses hyphens", "one -- two", "one-two"},
		{"trims edge hyphens", "  -edge case-  ", "edge-case"},
		{"already a slug", "pharma-pricing-pressure", "pharma-pricing-pressure"},
		{"digits kept", "Top 10 Picks for 2024", "top-10-picks-for-2024"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "hello-world", "top-10-picks", "2024"}
	for _, s := range valid {
		assert.True(t, IsValidSlug(s), s)
	}

	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "Upper", "with space", "uni·code"}
	for _, s := range invalid {
		assert.False(t, IsValidSlug(s), s)
	}
}

func TestEstimateReadTime(t *testing.T) {
	assert.Equal(t, "1 min read", EstimateReadTime("short body"))
	assert.Equal(t, "1 min read", EstimateReadTime(""))

	long := ""
	for range 450 {
		long += "word "
	}
	assert.Equal(t, "3 min read", EstimateReadTime(long))
}
