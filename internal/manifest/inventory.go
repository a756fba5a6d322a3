package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/example/go-noisy-speech/internal/synth"
)

// ErrMissingAudio is returned when a sample's output file is not on disk.
var ErrMissingAudio = errors.New("sample audio missing")

var inventoryHeader = []string{"wav_filename", "wav_filesize", "transcript"}

// InventoryStats summarizes a written inventory table.
type InventoryStats struct {
	Rows  int
	Bytes int64
}

// WriteInventory writes one row per sample to inventory.csv. Each row is
// flushed before the next sample is resolved, so a failure leaves every
// earlier row on disk.
func WriteInventory(dir string, samples []synth.Sample, resolver *TranscriptResolver) (stats InventoryStats, err error) {
	f, err := os.Create(filepath.Join(dir, InventoryFile))
	if err != nil {
		return stats, fmt.Errorf("create inventory: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close inventory: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := writeRow(w, inventoryHeader); err != nil {
		return stats, err
	}

	for _, s := range samples {
		wavFile, size, err := locateAudio(s.Audio)
		if err != nil {
			return stats, fmt.Errorf("sample %d: %w", s.Index, err)
		}

		transcript, err := resolver.Resolve(s.Voice)
		if err != nil {
			return stats, fmt.Errorf("sample %d: %w", s.Index, err)
		}

		if err := writeRow(w, []string{wavFile, strconv.FormatInt(size, 10), transcript}); err != nil {
			return stats, err
		}

		stats.Rows++
		stats.Bytes += size
	}

	return stats, nil
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write inventory row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush inventory: %w", err)
	}

	return nil
}

// locateAudio returns the absolute, symlink-free path of an output clip and
// its size.
func locateAudio(path string) (string, int64, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", 0, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", 0, fmt.Errorf("%w: %s", ErrMissingAudio, abs)
		}
		return "", 0, fmt.Errorf("stat %s: %w", abs, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", 0, fmt.Errorf("resolve %s: %w", abs, err)
	}

	return resolved, info.Size(), nil
}
