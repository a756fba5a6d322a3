package synth

import (
	"fmt"
	"math"
)

// layoutTolerance absorbs float rounding when checking stop = start + speech.
const layoutTolerance = 1e-9

// Layout places the speech inside a padded, mixed clip. All values are seconds.
type Layout struct {
	SpeechDuration float64 `json:"speech duration"`
	TotalDuration  float64 `json:"total duration"`
	Start          float64 `json:"start"`
	Stop           float64 `json:"stop"`
}

// Validate checks 0 <= start, start + speech = stop <= total.
func (l Layout) Validate() error {
	if l.Start < 0 {
		return fmt.Errorf("layout start %v is negative", l.Start)
	}
	if math.Abs(l.Start+l.SpeechDuration-l.Stop) > layoutTolerance {
		return fmt.Errorf("layout stop %v != start %v + speech %v", l.Stop, l.Start, l.SpeechDuration)
	}
	if l.Stop > l.TotalDuration+layoutTolerance {
		return fmt.Errorf("layout stop %v exceeds total %v", l.Stop, l.TotalDuration)
	}

	return nil
}

// Sample records one synthesized clip. Field names match the index.json
// schema consumed by downstream training tools.
type Sample struct {
	Index  int    `json:"n"`
	Audio  string `json:"audio"`
	Voice  string `json:"wav"`
	Layout Layout `json:"layout"`
}
