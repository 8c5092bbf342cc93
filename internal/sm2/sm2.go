package sm2

import (
	"math"
	"time"
)

// Quality ratings offered as shortcuts by the study front ends.
// Any integer from MinQuality to MaxQuality is a valid rating.
const (
	Again = 1
	Okay  = 3
	Easy  = 5
)

const (
	MinQuality     = 0
	MaxQuality     = 5
	PassingQuality = 3

	MinEaseFactor = 1.3

	// Day is the length of one interval unit.
	Day = 24 * time.Hour
)

// State is the scheduling state produced by a review.
type State struct {
	EaseFactor  float64
	Interval    int // days
	Repetitions int
}

// ComputeNextState applies a quality rating to a card's scheduling state.
// It does not validate its inputs: a quality outside 0-5 only scales the ease
// factor adjustment.
func ComputeNextState(easeFactor float64, quality, interval, repetitions int) State {
	q := float64(MaxQuality - quality)
	newEaseFactor := math.Max(MinEaseFactor, easeFactor+0.1-q*(0.08+q*0.02))

	if IsLapse(quality) {
		return State{
			EaseFactor:  newEaseFactor,
			Interval:    0,
			Repetitions: 0,
		}
	}

	var newInterval int
	switch repetitions {
	case 0:
		newInterval = 1
	case 1:
		newInterval = 3
	default:
		// Growth uses the ease factor after this review's adjustment.
		newInterval = int(math.Round(float64(interval) * newEaseFactor))
	}

	return State{
		EaseFactor:  newEaseFactor,
		Interval:    newInterval,
		Repetitions: repetitions + 1,
	}
}

// IsLapse reports whether a quality rating counts as a failed recall.
func IsLapse(quality int) bool {
	return quality < PassingQuality
}

// NextReview returns the time a card reviewed at now becomes due again.
func NextReview(now time.Time, interval int) time.Time {
	return now.Add(time.Duration(interval) * Day)
}
