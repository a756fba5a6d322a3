package random

import (
	"errors"
	"fmt"
	"math"
)

// WeightTolerance bounds how far option probabilities may sum away from 1.
const WeightTolerance = 1e-6

// ErrInvalidWeights is returned when an option set is empty or its
// probabilities do not sum to 1.
var ErrInvalidWeights = errors.New("option probabilities must sum to 1")

// Option is one outcome of a weighted draw.
type Option[T any] struct {
	Probability float64
	Value       T
}

// ValidateOptions checks that options are non-empty, non-negative and sum to
// 1 within WeightTolerance.
func ValidateOptions[T any](options []Option[T]) error {
	if len(options) == 0 {
		return fmt.Errorf("%w: no options", ErrInvalidWeights)
	}

	var sum float64
	for i, o := range options {
		if o.Probability < 0 || math.IsNaN(o.Probability) {
			return fmt.Errorf("%w: option %d has probability %v", ErrInvalidWeights, i, o.Probability)
		}

		sum += o.Probability
	}

	if math.Abs(sum-1.0) >= WeightTolerance {
		return fmt.Errorf("%w: sum is %v", ErrInvalidWeights, sum)
	}

	return nil
}

// Pick draws one outcome using a single Float64 from s. Options are scanned in
// declaration order; if rounding leaves the draw unconsumed the last outcome
// is returned. Invalid option sets fail before anything is drawn.
func Pick[T any](s *Stream, options []Option[T]) (T, error) {
	if err := ValidateOptions(options); err != nil {
		var zero T
		return zero, err
	}

	x := s.Float64()
	for _, o := range options {
		x -= o.Probability
		if x < 0 {
			return o.Value, nil
		}
	}

	return options[len(options)-1].Value, nil
}
