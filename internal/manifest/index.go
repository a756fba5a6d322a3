// Package manifest persists the outcome of a synthesis run: the index.json
// snapshot of every sample produced and the inventory.csv table pairing each
// clip with its transcript.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/go-noisy-speech/internal/synth"
)

// Output file names inside a run directory.
const (
	IndexFile     = "index.json"
	InventoryFile = "inventory.csv"
)

// RunInfo identifies the run that produced an index.
type RunInfo struct {
	ID         string `json:"id"`
	Seed       int64  `json:"seed"`
	Mask       string `json:"mask"`
	SampleRate int    `json:"sample_rate"`
	Voices     int    `json:"voices"`
}

// Index is the index.json document.
type Index struct {
	Run     RunInfo        `json:"run"`
	Samples []synth.Sample `json:"samples"`
}

// WriteIndex writes all samples as one document, replacing any previous index.
func WriteIndex(dir string, run RunInfo, samples []synth.Sample) error {
	if samples == nil {
		samples = []synth.Sample{}
	}

	data, err := json.MarshalIndent(Index{Run: run, Samples: samples}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	path := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	return nil
}

// ReadIndex loads the index.json document from dir.
func ReadIndex(dir string) (Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return Index{}, fmt.Errorf("read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return Index{}, fmt.Errorf("decode index: %w", err)
	}

	return idx, nil
}
