package chunker

import (
	"testing"

	"github.com/dgallion1/docslice/internal/doctree"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"第一条", 3},
		{"one two three", 3},
		{"第一章 General provisions", 5},
		{"x", 1},
	}
	for _, tc := range tests {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%q): expected %d, got %d", tc.text, tc.want, got)
		}
	}
}

func TestEstimateChunkTokens(t *testing.T) {
	chunks := []doctree.Chunk{
		{Chapter: "第一章", Content: "第一条"},
		{Content: "one two three"},
	}
	if got := EstimateChunkTokens(chunks); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
}
