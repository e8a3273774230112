package spaced_repetition

import (
	"math"

	"github.com/example/studyplan/internal/apperr"
)

const (
	// DefaultEaseFactor is the ease factor of a new item
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the SM-2 floor for the ease factor
	MinEaseFactor = 1.3
	// MaxEaseFactor is the ceiling stored items are allowed to reach
	MaxEaseFactor = 3.0
	// DefaultInterval is the interval in days of a new item
	DefaultInterval = 1
)

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// State is the part of a review item the interval model reads and writes
type State struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
}

// InitialState returns the state of an item that has never been reviewed
func InitialState() State {
	return State{EaseFactor: DefaultEaseFactor, Interval: DefaultInterval}
}

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Quality at or above which a recall counts as correct
	PassThreshold int
	// Maximum interval in days, 0 means unbounded
	MaxInterval int
}

// NewSM2 creates an SM2 with the standard pass threshold and no interval cap
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: int(QualityCorrectDifficult),
		MaxInterval:   0,
	}
}

// ValidateQuality rejects anything outside the 0-5 scale
func ValidateQuality(quality int) error {
	if quality < int(QualityBlackout) || quality > int(QualityPerfect) {
		return &apperr.QualityError{Quality: quality}
	}
	return nil
}

// Passed reports whether quality counts as a correct recall
func (sm *SM2) Passed(quality int) bool {
	return quality >= sm.PassThreshold
}

// NextState computes the state after a review graded with quality.
// The interval growth uses the interval and ease factor from before the review.
func (sm *SM2) NextState(prev State, quality int) (State, error) {
	if err := ValidateQuality(quality); err != nil {
		return prev, err
	}

	next := State{
		EaseFactor: NextEaseFactor(prev.EaseFactor, quality),
	}

	if sm.Passed(quality) {
		next.Repetitions = prev.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(prev.Interval) * prev.EaseFactor))
		}
		if sm.MaxInterval > 0 && next.Interval > sm.MaxInterval {
			next.Interval = sm.MaxInterval
		}
		if next.Interval < 1 {
			next.Interval = 1
		}
	} else {
		// Failed recall starts the sequence over
		next.Repetitions = 0
		next.Interval = 1
	}

	return next, nil
}

// NextEaseFactor applies the SM-2 quadratic penalty and clamps to [1.3, 3.0]
func NextEaseFactor(ef float64, quality int) float64 {
	q := float64(5 - quality)
	newEF := ef + (0.1 - q*(0.08+q*0.02))
	if newEF < MinEaseFactor {
		newEF = MinEaseFactor
	}
	if newEF > MaxEaseFactor {
		newEF = MaxEaseFactor
	}
	// Strip float noise so 2.5 + 0.1 is stored as 2.6
	return math.Round(newEF*1e6) / 1e6
}

// QualityFromAccuracy maps an answer accuracy (0.0 - 1.0) onto the 0-5 scale
func QualityFromAccuracy(accuracy float64) int {
	if accuracy <= 0 {
		return int(QualityBlackout)
	}
	q := int(math.Round(accuracy * 5))
	if q > int(QualityPerfect) {
		q = int(QualityPerfect)
	}
	return q
}
