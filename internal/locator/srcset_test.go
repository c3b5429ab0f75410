package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBestCandidateTieBreak(t *testing.T) {
	got, ok := SelectBestCandidate("a.jpg 100w, b.jpg 300w, c.jpg 300w")
	assert.True(t, ok)
	assert.Equal(t, "b.jpg", got)
}

func TestSelectBestCandidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"density descriptors", "small.png 1x, large.png 2x", "large.png", true},
		{"no descriptors keeps first", "one.png, two.png", "one.png", true},
		{"unparsable width counts as zero", "a.png wide, b.png 10w", "b.png", true},
		{"extra whitespace", "  a.png   50w ,\n b.png  20w ", "a.png", true},
		{"empty entries dropped", ", , c.png 5w,", "c.png", true},
		{"empty", "", "", false},
		{"only commas", " , ,", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectBestCandidate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCandidates(t *testing.T) {
	got := ParseCandidates("a.png 100w, b.png, c.png 3x")
	assert.Equal(t, []Candidate{
		{URL: "a.png", Width: 100},
		{URL: "b.png", Width: 0},
		{URL: "c.png", Width: 3},
	}, got)
}
