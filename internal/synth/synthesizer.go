// Package synth mixes voice clips with background noise into padded,
// normalized 16-bit training samples.
//
// A Synthesizer owns a background cache and draws from a shared random
// stream; it must be driven from a single goroutine, one clip at a time, for
// output to be reproducible.
package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/example/go-noisy-speech/internal/audio"
	"github.com/example/go-noisy-speech/internal/corpus"
	"github.com/example/go-noisy-speech/internal/random"
)

var (
	// ErrWindowTooLong is returned when a background clip is shorter than
	// the mix it must cover.
	ErrWindowTooLong = errors.New("background window longer than clip")
	// ErrNotEnoughBackgrounds is returned when more distinct backgrounds are
	// requested than the corpus holds.
	ErrNotEnoughBackgrounds = errors.New("not enough background clips")
)

// FileName returns the zero-padded output name for sample index.
func FileName(index int) string {
	return fmt.Sprintf("%06d.wav", index)
}

// Options configures a Synthesizer.
type Options struct {
	Params Params
	// Backgrounds are inventory paths; their position is the cache key.
	Backgrounds []string
	// BaseDir resolves relative voice and background paths.
	BaseDir string
	Stream  *random.Stream
	Logger  *slog.Logger
}

// Synthesizer produces one Sample per voice clip.
type Synthesizer struct {
	params      Params
	backgrounds []string
	baseDir     string
	rng         *random.Stream
	logger      *slog.Logger
	cache       map[int]audio.Waveform
}

// New validates opts and returns a Synthesizer with an empty background cache.
func New(opts Options) (*Synthesizer, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Stream == nil {
		return nil, errors.New("random stream is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Synthesizer{
		params:      opts.Params,
		backgrounds: append([]string(nil), opts.Backgrounds...),
		baseDir:     opts.BaseDir,
		rng:         opts.Stream,
		logger:      logger,
		cache:       make(map[int]audio.Waveform),
	}, nil
}

// CachedBackgrounds reports how many background clips have been decoded.
func (s *Synthesizer) CachedBackgrounds() int {
	return len(s.cache)
}

// Synthesize mixes the voice clip at voicePath and writes it to outDir as
// FileName(index).
func (s *Synthesizer) Synthesize(index int, voicePath, outDir string) (Sample, error) {
	rate := s.params.SampleRate

	speech, err := audio.ReadWAV(corpus.Resolve(s.baseDir, voicePath))
	if err != nil {
		return Sample{}, fmt.Errorf("voice %s: %w", voicePath, err)
	}
	if speech.SampleRate != rate {
		return Sample{}, fmt.Errorf("%w: voice %s: sample rate %d, want %d",
			audio.ErrFormatMismatch, voicePath, speech.SampleRate, rate)
	}

	duration := speech.Duration()

	padStart := 0.0
	if s.rng.Float64() < s.params.PaddingProbability {
		padStart = s.rng.Uniform(0, duration*s.params.MaxPadFraction)
	}

	padEnd := s.params.EndPad
	if s.rng.Float64() < s.params.PaddingProbability {
		padEnd = s.rng.Uniform(0, duration*s.params.MaxPadFraction)
	}

	totalDuration := duration + padStart + padEnd
	totalSamples := int(totalDuration * float64(rate))
	offset := int(padStart * float64(rate))
	// Rounding can leave the derived length a sample short of the speech.
	if need := offset + len(speech.Samples); need > totalSamples {
		totalSamples = need
	}

	windows, err := s.backgroundWindows(totalSamples)
	if err != nil {
		return Sample{}, fmt.Errorf("voice %s: %w", voicePath, err)
	}

	mix := make([]float64, totalSamples)
	gains := make([]float64, 0, len(windows)+1)

	for _, w := range windows {
		g := s.rng.Uniform(s.params.BackgroundGain.Min, s.params.BackgroundGain.Max)
		for i, v := range w {
			mix[i] += v * g
		}
		gains = append(gains, g)
	}

	g := s.rng.Uniform(s.params.SpeechGain.Min, s.params.SpeechGain.Max)
	for i, v := range speech.Samples {
		mix[offset+i] += v * g
	}
	gains = append(gains, g)

	normalize(mix, gains)

	out := filepath.Join(outDir, FileName(index))
	if err := audio.WritePCM16(out, rate, audio.Quantize(mix)); err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Index: index,
		Audio: out,
		Voice: voicePath,
		Layout: Layout{
			SpeechDuration: duration,
			TotalDuration:  totalDuration,
			Start:          padStart,
			Stop:           padStart + duration,
		},
	}

	s.logger.Debug("sample synthesized",
		"n", index,
		"voice", voicePath,
		"backgrounds", len(windows),
		"total_duration", totalDuration,
	)

	return sample, nil
}

// backgroundWindows picks how many backgrounds to overlay, which ones, and
// a random window of n samples from each.
func (s *Synthesizer) backgroundWindows(n int) ([][]float64, error) {
	count, err := random.Pick(s.rng, s.params.BackgroundCounts)
	if err != nil {
		return nil, err
	}
	if count > len(s.backgrounds) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughBackgrounds, count, len(s.backgrounds))
	}

	picked, err := s.rng.Sample(len(s.backgrounds), count)
	if err != nil {
		return nil, err
	}

	windows := make([][]float64, 0, count)
	for _, i := range picked {
		bg, err := s.background(i)
		if err != nil {
			return nil, err
		}
		if len(bg.Samples) < n {
			return nil, fmt.Errorf("%w: %s has %d samples, need %d",
				ErrWindowTooLong, s.backgrounds[i], len(bg.Samples), n)
		}

		start, err := s.rng.IntRange(0, len(bg.Samples)-n)
		if err != nil {
			return nil, err
		}
		windows = append(windows, bg.Samples[start:start+n])
	}

	return windows, nil
}

// background is a read-through cache over decoded background clips.
func (s *Synthesizer) background(i int) (audio.Waveform, error) {
	if w, ok := s.cache[i]; ok {
		return w, nil
	}

	path := s.backgrounds[i]

	w, err := audio.ReadWAV(corpus.Resolve(s.baseDir, path))
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("background %s: %w", path, err)
	}
	if w.SampleRate != s.params.SampleRate {
		return audio.Waveform{}, fmt.Errorf("%w: background %s: sample rate %d, want %d",
			audio.ErrFormatMismatch, path, w.SampleRate, s.params.SampleRate)
	}

	s.cache[i] = w
	s.logger.Debug("background cached", "index", i, "path", path, "samples", len(w.Samples))

	return w, nil
}

// normalize divides mix by the sum of the gains that built it so stacked
// sources cannot exceed the input range.
func normalize(mix, gains []float64) {
	if len(gains) == 0 {
		return
	}

	var sum float64
	for _, g := range gains {
		sum += g
	}
	if sum == 0 {
		return
	}

	for i := range mix {
		mix[i] /= sum
	}
}
