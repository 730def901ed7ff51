package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordFrequency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "stopwords and punctuation",
			text: "The tide is high. The TIDE, again! Click here.",
			want: map[string]int{"tide": 2, "high": 1},
		},
		{
			name: "contractions are stopwords",
			text: "Don't stop; it's turbines",
			want: map[string]int{"stop": 1, "turbines": 1},
		},
		{
			name: "numbers and single letters dropped",
			text: "x 42 3.14 2024 go",
			want: map[string]int{"go": 1},
		},
		{
			name: "unicode words",
			text: "Über café über",
			want: map[string]int{"über": 2, "café": 1},
		},
		{
			name: "empty",
			text: "   ",
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordFrequency(tt.text))
		})
	}
}

func TestCorpusFrequency(t *testing.T) {
	got := CorpusFrequency([]string{"tidal energy", "tidal turbines", "energy energy"})
	assert.Equal(t, map[string]int{"tidal": 2, "energy": 3, "turbines": 1}, got)
}

func TestMerge(t *testing.T) {
	got := Merge(map[string]int{"a1": 1, "b2": 2}, nil, map[string]int{"a1": 4})
	assert.Equal(t, map[string]int{"a1": 5, "b2": 2}, got)
}

func TestTopKeywords(t *testing.T) {
	counts := map[string]int{
		"tidal":   5,
		"energy":  3,
		"ocean":   3,
		"func(":   9,
		"key:":    9,
		"x_train": 1,
	}

	assert.Equal(t, []string{"tidal:5", "energy:3", "ocean:3"}, TopKeywords(counts, 3))
	assert.Equal(t, []string{"tidal:5", "energy:3", "ocean:3", "x_train:1"}, TopKeywords(counts, 10))
	assert.Empty(t, TopKeywords(counts, 0))
	assert.Empty(t, TopKeywords(nil, 5))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("The"))
	assert.True(t, IsStopword("homepage"))
	assert.False(t, IsStopword("turbine"))
}
