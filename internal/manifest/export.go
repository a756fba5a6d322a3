package manifest

import (
	"errors"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/example/go-noisy-speech/internal/synth"
)

// ExportOptions describes where a run's records go.
type ExportOptions struct {
	Dir string
	// BaseDir resolves relative voice paths when locating transcripts.
	BaseDir string
	Run     RunInfo
	Logger  *slog.Logger
}

// Export writes index.json and then inventory.csv for samples. The table is
// attempted even if the index could not be written; both failures are
// reported.
func Export(opts ExportOptions, samples []synth.Sample) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	indexErr := WriteIndex(opts.Dir, opts.Run, samples)
	if indexErr != nil {
		logger.Error("index export failed", "dir", opts.Dir, "error", indexErr)
	}

	resolver := NewTranscriptResolver(opts.BaseDir)

	stats, invErr := WriteInventory(opts.Dir, samples, resolver)
	if invErr != nil {
		logger.Error("inventory export failed",
			"dir", opts.Dir,
			"rows", stats.Rows,
			"samples", len(samples),
			"error", invErr,
		)
	}

	logger.Info("dataset exported",
		"dir", opts.Dir,
		"samples", len(samples),
		"rows", stats.Rows,
		"transcript_files", resolver.CachedGroups(),
		"audio_size", humanize.Bytes(uint64(stats.Bytes)),
	)

	return errors.Join(indexErr, invErr)
}
