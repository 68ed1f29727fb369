package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		correct bool
		want    int
	}{
		{"wrong first attempt", 1, false, 0},
		{"wrong later attempt", 4, false, 0},
		{"correct first try", 1, true, 25},
		{"correct second try", 2, true, 20},
		{"correct third try", 3, true, 15},
		{"correct fifth try", 5, true, 5},
		{"floored at minimum", 9, true, 5},
		{"zero attempt treated as first", 0, true, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.attempt, tt.correct))
		})
	}
}

func TestScoreMatchesFormula(t *testing.T) {
	for n := 1; n <= 20; n++ {
		want := 25 - 5*(n-1)
		if want < 5 {
			want = 5
		}
		assert.Equal(t, want, Score(n, true), "attempt %d", n)
	}
}

func TestIsFirstTry(t *testing.T) {
	assert.True(t, IsFirstTry(1, true))
	assert.False(t, IsFirstTry(1, false))
	assert.False(t, IsFirstTry(2, true))
}
