// Package dataset drives one corpus generation run: it shards the voice
// inventory, synthesizes every clip in order from a single seeded stream,
// and always exports whatever samples were produced, even when the loop
// stops early.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/example/go-noisy-speech/internal/bench"
	"github.com/example/go-noisy-speech/internal/corpus"
	"github.com/example/go-noisy-speech/internal/manifest"
	"github.com/example/go-noisy-speech/internal/random"
	"github.com/example/go-noisy-speech/internal/synth"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("output directory is locked by another run")

// Options configures Generate.
type Options struct {
	Dir                 string
	Mask                string
	Seed                int64
	VoiceInventory      string
	BackgroundInventory string
	// BaseDir resolves relative paths found in the inventories.
	BaseDir string
	Params  synth.Params
	// PartitionBackgrounds applies Mask to the background inventory too, so
	// shards never share noise clips.
	PartitionBackgrounds bool
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	Logger   *slog.Logger
}

// Result describes a finished or aborted run.
type Result struct {
	RunID       string
	Voices      int
	Backgrounds int
	Samples     []synth.Sample
	Timing      bench.Summary
}

// RunID derives a stable identifier from the inputs that determine a run's
// output.
func RunID(seed int64, mask string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "noisyspeech:%d:%s", seed, mask)).String()
}

// Generate recreates opts.Dir and fills it with one clip per selected voice,
// index.json and inventory.csv. If synthesis fails part way, the samples
// already written are exported before the error is returned.
func Generate(ctx context.Context, opts Options) (res Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Dir == "" {
		return res, errors.New("output directory is required")
	}
	if _, err := corpus.ParseMask(opts.Mask); err != nil {
		return res, err
	}

	unlock, err := lockDir(opts.Dir, logger)
	if err != nil {
		return res, err
	}
	defer unlock()

	voices, backgrounds, err := loadInventories(opts)
	if err != nil {
		return res, err
	}

	res.RunID = RunID(opts.Seed, opts.Mask)
	res.Voices = len(voices)
	res.Backgrounds = len(backgrounds)

	s, err := synth.New(synth.Options{
		Params:      opts.Params,
		Backgrounds: backgrounds,
		BaseDir:     opts.BaseDir,
		Stream:      random.NewStream(opts.Seed),
		Logger:      logger,
	})
	if err != nil {
		return res, err
	}

	if err := resetDir(opts.Dir); err != nil {
		return res, err
	}

	logger.Info("generating dataset",
		"dir", opts.Dir,
		"mask", opts.Mask,
		"seed", opts.Seed,
		"run_id", res.RunID,
		"voices", len(voices),
		"backgrounds", len(backgrounds),
	)

	samples := make([]synth.Sample, 0, len(voices))
	var timing bench.Recorder
	defer func() {
		res.Samples = samples
		res.Timing = timing.Summary()
		exportErr := manifest.Export(manifest.ExportOptions{
			Dir:     opts.Dir,
			BaseDir: opts.BaseDir,
			Run: manifest.RunInfo{
				ID:         res.RunID,
				Seed:       opts.Seed,
				Mask:       opts.Mask,
				SampleRate: opts.Params.SampleRate,
				Voices:     len(voices),
			},
			Logger: logger,
		}, samples)
		err = errors.Join(err, exportErr)
	}()

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(voices),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("synthesizing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for k, voice := range voices {
		if err := ctx.Err(); err != nil {
			logger.Warn("generation interrupted", "completed", len(samples), "voices", len(voices))
			return res, err
		}

		began := time.Now()
		sample, err := s.Synthesize(k, voice, opts.Dir)
		if err != nil {
			logger.Error("synthesis failed", "n", k, "voice", voice, "completed", len(samples), "error", err)
			return res, fmt.Errorf("sample %d: %w", k, err)
		}
		samples = append(samples, sample)
		timing.Add(time.Since(began), bench.Seconds(sample.Layout.TotalDuration))

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	sum := timing.Summary()
	logger.Info("synthesis finished",
		"samples", sum.Clips,
		"audio", sum.Audio,
		"elapsed", sum.Total,
		"mean", sum.Mean,
		"max", sum.Max,
		"rtf", sum.RTF,
	)

	return res, nil
}

func loadInventories(opts Options) (voices, backgrounds []string, err error) {
	voices, err = corpus.LoadVoices(opts.VoiceInventory)
	if err != nil {
		return nil, nil, err
	}
	voices, err = corpus.ApplyMask(opts.Mask, voices)
	if err != nil {
		return nil, nil, err
	}

	backgrounds, err = corpus.LoadBackgrounds(opts.BackgroundInventory)
	if err != nil {
		return nil, nil, err
	}
	if opts.PartitionBackgrounds {
		backgrounds, err = corpus.ApplyMask(opts.Mask, backgrounds)
		if err != nil {
			return nil, nil, err
		}
	}

	return voices, backgrounds, nil
}

// lockDir takes an advisory lock on a sibling of dir so two runs cannot
// rebuild the same directory at once.
func lockDir(dir string, logger *slog.Logger) (func(), error) {
	lockPath := filepath.Clean(dir) + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}

	// The lock file stays on disk so every run locks the same inode.
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", "lock", lockPath, "error", err)
		}
	}, nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	return nil
}
