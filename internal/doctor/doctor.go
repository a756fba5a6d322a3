// Package doctor provides preflight checks for a corpus before generation.
package doctor

import (
	"fmt"
	"io"

	"github.com/example/go-noisy-speech/internal/audio"
	"github.com/example/go-noisy-speech/internal/corpus"
	"github.com/example/go-noisy-speech/internal/manifest"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Config describes the corpus to check.
type Config struct {
	VoiceInventory      string
	BackgroundInventory string
	// BaseDir resolves relative inventory paths.
	BaseDir    string
	SampleRate int
	// Mask restricts the clip checks to one shard. Empty checks everything.
	Mask string
	// PartitionBackgrounds applies Mask to backgrounds as well.
	PartitionBackgrounds bool
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(w io.Writer, msg string) {
	r.failures = append(r.failures, msg)
	fmt.Fprintf(w, "%s %s\n", FailMark, msg)
}

// Run executes all checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- inventories ------------------------------------------------------
	voices, err := corpus.LoadVoices(cfg.VoiceInventory)
	if err != nil {
		res.fail(w, fmt.Sprintf("voice inventory: %v", err))
	} else {
		fmt.Fprintf(w, "%s voice inventory: %d voices (%s)\n", PassMark, len(voices), cfg.VoiceInventory)
	}

	backgrounds, err := corpus.LoadBackgrounds(cfg.BackgroundInventory)
	if err != nil {
		res.fail(w, fmt.Sprintf("background inventory: %v", err))
	} else {
		fmt.Fprintf(w, "%s background inventory: %d clips (%s)\n", PassMark, len(backgrounds), cfg.BackgroundInventory)
	}

	// ---- mask -------------------------------------------------------------
	if cfg.Mask != "" {
		voices, backgrounds, err = applyMask(cfg, voices, backgrounds)
		if err != nil {
			res.fail(w, fmt.Sprintf("mask %q: %v", cfg.Mask, err))
			return res
		}
		fmt.Fprintf(w, "%s mask %s: %d voices, %d backgrounds\n", PassMark, cfg.Mask, len(voices), len(backgrounds))
	}

	// ---- clips ------------------------------------------------------------
	checkClips(&res, w, "voice", cfg, voices)
	checkClips(&res, w, "background", cfg, backgrounds)

	// ---- transcripts ------------------------------------------------------
	resolver := manifest.NewTranscriptResolver(cfg.BaseDir)
	missing := 0
	for _, v := range voices {
		if _, err := resolver.Resolve(v); err != nil {
			missing++
			res.fail(w, fmt.Sprintf("transcript for %s: %v", v, err))
		}
	}
	if len(voices) > 0 && missing == 0 {
		fmt.Fprintf(w, "%s transcripts: %d voices in %d groups\n", PassMark, len(voices), resolver.CachedGroups())
	}

	return res
}

func applyMask(cfg Config, voices, backgrounds []string) ([]string, []string, error) {
	voices, err := corpus.ApplyMask(cfg.Mask, voices)
	if err != nil {
		return nil, nil, err
	}
	if cfg.PartitionBackgrounds {
		backgrounds, err = corpus.ApplyMask(cfg.Mask, backgrounds)
		if err != nil {
			return nil, nil, err
		}
	}

	return voices, backgrounds, nil
}

func checkClips(res *Result, w io.Writer, kind string, cfg Config, paths []string) {
	bad := 0
	var seconds float64
	for _, p := range paths {
		info, err := audio.Probe(corpus.Resolve(cfg.BaseDir, p))
		if err == nil {
			err = checkFormat(info, cfg.SampleRate)
		}
		if err != nil {
			bad++
			res.fail(w, fmt.Sprintf("%s clip %s: %v", kind, p, err))
			continue
		}
		seconds += info.Duration()
	}

	if len(paths) > 0 && bad == 0 {
		fmt.Fprintf(w, "%s %s clips: %d ok, %.1fs total\n", PassMark, kind, len(paths), seconds)
	}
}

// checkFormat returns an error unless info is mono 16-bit PCM at sampleRate.
func checkFormat(info audio.Info, sampleRate int) error {
	if info.SampleRate != sampleRate {
		return fmt.Errorf("%w: sample rate %d, want %d", audio.ErrFormatMismatch, info.SampleRate, sampleRate)
	}
	if info.Channels != audio.ExpectedChannels {
		return fmt.Errorf("%w: channels %d, want %d", audio.ErrFormatMismatch, info.Channels, audio.ExpectedChannels)
	}
	if info.BitDepth != audio.ExpectedBitDepth {
		return fmt.Errorf("%w: bit depth %d, want %d", audio.ErrFormatMismatch, info.BitDepth, audio.ExpectedBitDepth)
	}
	if info.Frames == 0 {
		return fmt.Errorf("%w: no audio frames", audio.ErrFormatMismatch)
	}

	return nil
}
