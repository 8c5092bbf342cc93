package sm2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeNextState(t *testing.T) {
	testCases := []struct {
		name        string
		easeFactor  float64
		quality     int
		interval    int
		repetitions int
		expected    State
	}{
		{
			name:        "first pass",
			easeFactor:  2.5,
			quality:     5,
			interval:    0,
			repetitions: 0,
			expected:    State{EaseFactor: 2.6, Interval: 1, Repetitions: 1},
		},
		{
			name:        "second pass",
			easeFactor:  2.5,
			quality:     5,
			interval:    1,
			repetitions: 1,
			expected:    State{EaseFactor: 2.6, Interval: 3, Repetitions: 2},
		},
		{
			name:        "third pass grows geometrically",
			easeFactor:  2.5,
			quality:     4,
			interval:    3,
			repetitions: 2,
			expected:    State{EaseFactor: 2.5, Interval: 8, Repetitions: 3},
		},
		{
			name:        "pass at threshold lowers ease",
			easeFactor:  2.5,
			quality:     3,
			interval:    10,
			repetitions: 4,
			// 2.5 + 0.1 - 2*(0.08+0.04) = 2.36, round(10*2.36) = 24
			expected: State{EaseFactor: 2.36, Interval: 24, Repetitions: 5},
		},
		{
			name:        "blackout lapse resets streak",
			easeFactor:  2.5,
			quality:     0,
			interval:    10,
			repetitions: 5,
			// 2.5 + 0.1 - 5*(0.08+0.1) = 1.7
			expected: State{EaseFactor: 1.7, Interval: 0, Repetitions: 0},
		},
		{
			name:        "blackout at minimum ease is floored",
			easeFactor:  1.3,
			quality:     0,
			interval:    10,
			repetitions: 5,
			expected:    State{EaseFactor: 1.3, Interval: 0, Repetitions: 0},
		},
		{
			name:        "first pass after a lapse",
			easeFactor:  1.7,
			quality:     4,
			interval:    0,
			repetitions: 0,
			expected:    State{EaseFactor: 1.7, Interval: 1, Repetitions: 1},
		},
		{
			name:        "out of range quality amplifies adjustment",
			easeFactor:  2.5,
			quality:     6,
			interval:    0,
			repetitions: 0,
			// 2.5 + 0.1 - (-1)*(0.08-0.02) = 2.66
			expected: State{EaseFactor: 2.66, Interval: 1, Repetitions: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeNextState(tc.easeFactor, tc.quality, tc.interval, tc.repetitions)
			assert.InDelta(t, tc.expected.EaseFactor, got.EaseFactor, 1e-9)
			assert.Equal(t, tc.expected.Interval, got.Interval)
			assert.Equal(t, tc.expected.Repetitions, got.Repetitions)
		})
	}
}

func TestEaseFactorNeverBelowFloor(t *testing.T) {
	for ease := MinEaseFactor; ease <= 3.5; ease += 0.05 {
		for q := MinQuality; q <= MaxQuality; q++ {
			got := ComputeNextState(ease, q, 5, 3)
			if got.EaseFactor < MinEaseFactor {
				t.Fatalf("ComputeNextState(%.2f, %d) ease = %.4f, below floor", ease, q, got.EaseFactor)
			}
		}
	}
}

func TestLapseAlwaysResets(t *testing.T) {
	for q := MinQuality; q < PassingQuality; q++ {
		for reps := 0; reps < 10; reps++ {
			got := ComputeNextState(2.1, q, reps*7, reps)
			assert.Equal(t, 0, got.Interval, "quality %d reps %d", q, reps)
			assert.Equal(t, 0, got.Repetitions, "quality %d reps %d", q, reps)
		}
	}
}

func TestRepeatedLapsesReachFloor(t *testing.T) {
	state := State{EaseFactor: 2.5}
	for i := 0; i < 10; i++ {
		state = ComputeNextState(state.EaseFactor, 0, state.Interval, state.Repetitions)
	}
	assert.Equal(t, MinEaseFactor, state.EaseFactor)
}

func TestComputeNextStateIsDeterministic(t *testing.T) {
	first := ComputeNextState(2.2, 4, 12, 6)
	second := ComputeNextState(2.2, 4, 12, 6)
	assert.Equal(t, first, second)
}

func TestNextReview(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, now, NextReview(now, 0))
	assert.Equal(t, now.UnixMilli()+86_400_000, NextReview(now, 1).UnixMilli())
	assert.Equal(t, now.UnixMilli()+3*86_400_000, NextReview(now, 3).UnixMilli())
}
