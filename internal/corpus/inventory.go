package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type voiceInventory struct {
	Voice []string `json:"voice"`
}

type backgroundEntry struct {
	Sample string `json:"sample"`
}

// LoadVoices reads an all_voices.json document and returns its voice paths in
// file order.
func LoadVoices(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("voice inventory path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice inventory: %w", err)
	}

	var inv voiceInventory

	err = json.Unmarshal(data, &inv)
	if err != nil {
		return nil, fmt.Errorf("decode voice inventory: %w", err)
	}

	for i, p := range inv.Voice {
		if p == "" {
			return nil, fmt.Errorf("voice inventory entry %d has empty path", i)
		}
	}

	return inv.Voice, nil
}

// LoadBackgrounds reads an all_backgrounds.json document and returns the
// sample paths in file order.
func LoadBackgrounds(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("background inventory path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read background inventory: %w", err)
	}

	var entries []backgroundEntry

	err = json.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("decode background inventory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.Sample == "" {
			return nil, fmt.Errorf("background inventory entry %d has empty sample", i)
		}

		paths = append(paths, e.Sample)
	}

	return paths, nil
}
