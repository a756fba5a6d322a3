// Package bench accumulates per-clip synthesis timings for a generation run.
package bench

import (
	"time"
)

// Stats holds aggregate timing statistics across all clips.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// An empty slice yields zero Stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// CalcRTF returns synthesis_duration / audio_duration.
// Returns 0 if audioDur is zero to avoid division by zero.
func CalcRTF(synthDur, audioDur time.Duration) float64 {
	if audioDur <= 0 {
		return 0
	}
	return float64(synthDur) / float64(audioDur)
}

// Seconds converts a clip length in seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Recorder collects the wall time spent on each clip and the audio it
// produced. The zero value is ready to use.
type Recorder struct {
	took  []time.Duration
	audio time.Duration
}

// Add records one clip.
func (r *Recorder) Add(took, audio time.Duration) {
	r.took = append(r.took, took)
	r.audio += audio
}

// Summary describes the clips recorded so far.
type Summary struct {
	Clips int
	Stats
	Total time.Duration
	Audio time.Duration
	RTF   float64
}

// Summary aggregates the recorded clips.
func (r *Recorder) Summary() Summary {
	var total time.Duration
	for _, d := range r.took {
		total += d
	}

	return Summary{
		Clips: len(r.took),
		Stats: ComputeStats(r.took),
		Total: total,
		Audio: r.audio,
		RTF:   CalcRTF(total, r.audio),
	}
}
