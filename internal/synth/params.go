package synth

import (
	"errors"
	"fmt"

	"github.com/example/go-noisy-speech/internal/random"
)

// GainRange bounds a uniformly drawn linear gain.
type GainRange struct {
	Min float64
	Max float64
}

// Params controls how each clip is padded and mixed.
type Params struct {
	SampleRate int
	// PaddingProbability is drawn independently for the start and the end.
	PaddingProbability float64
	// MaxPadFraction caps a drawn pad at this fraction of the speech duration.
	MaxPadFraction float64
	// EndPad is the trailing silence, in seconds, when no end pad is drawn.
	EndPad           float64
	BackgroundCounts []random.Option[int]
	BackgroundGain   GainRange
	SpeechGain       GainRange
}

// DefaultParams returns the mixing parameters used for corpus generation.
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate:         sampleRate,
		PaddingProbability: 0.1,
		MaxPadFraction:     0.2,
		EndPad:             0.01,
		BackgroundCounts: []random.Option[int]{
			{Probability: 0.2, Value: 0},
			{Probability: 0.8, Value: 1},
		},
		BackgroundGain: GainRange{Min: 0.3, Max: 0.6},
		SpeechGain:     GainRange{Min: 0.6, Max: 1.0},
	}
}

// Validate rejects parameter sets that could never produce a clip.
func (p Params) Validate() error {
	if p.SampleRate < 1 {
		return fmt.Errorf("invalid sample rate: %d", p.SampleRate)
	}
	if p.PaddingProbability < 0 || p.PaddingProbability > 1 {
		return fmt.Errorf("padding probability %v outside [0, 1]", p.PaddingProbability)
	}
	if p.MaxPadFraction < 0 {
		return fmt.Errorf("max pad fraction %v is negative", p.MaxPadFraction)
	}
	if p.EndPad < 0 {
		return fmt.Errorf("end pad %v is negative", p.EndPad)
	}
	if err := random.ValidateOptions(p.BackgroundCounts); err != nil {
		return fmt.Errorf("background counts: %w", err)
	}
	for _, o := range p.BackgroundCounts {
		if o.Value < 0 {
			return errors.New("background counts must not be negative")
		}
	}
	if p.BackgroundGain.Min > p.BackgroundGain.Max || p.SpeechGain.Min > p.SpeechGain.Max {
		return errors.New("gain range min exceeds max")
	}

	return nil
}
