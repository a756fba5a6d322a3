package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-noisy-speech/internal/synth"
)

func TestWriteIndex_SchemaKeys(t *testing.T) {
	dir := t.TempDir()
	samples := []synth.Sample{{
		Index:  0,
		Audio:  "out/000000.wav",
		Voice:  "voices/84-121123-0000.wav",
		Layout: synth.Layout{SpeechDuration: 2, TotalDuration: 2.01, Start: 0, Stop: 2},
	}}

	if err := WriteIndex(dir, RunInfo{ID: "run", Seed: 42, Mask: "x", SampleRate: 16000, Voices: 1}, samples); err != nil {
		t.Fatalf("WriteIndex error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{`"samples"`, `"n"`, `"audio"`, `"wav"`, `"layout"`, `"speech duration"`, `"total duration"`, `"start"`, `"stop"`, `"seed": 42`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("index.json missing %s:\n%s", key, data)
		}
	}

	idx, err := ReadIndex(dir)
	if err != nil {
		t.Fatalf("ReadIndex error: %v", err)
	}

	if len(idx.Samples) != 1 || idx.Samples[0].Layout.TotalDuration != 2.01 {
		t.Errorf("ReadIndex = %+v", idx)
	}
}

func TestWriteIndex_EmptyRunWritesEmptyList(t *testing.T) {
	dir := t.TempDir()

	if err := WriteIndex(dir, RunInfo{}, nil); err != nil {
		t.Fatalf("WriteIndex error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), `"samples": []`) {
		t.Errorf("index.json = %s; want empty samples list", data)
	}
}

func TestReadIndex_Missing(t *testing.T) {
	if _, err := ReadIndex(t.TempDir()); err == nil {
		t.Fatal("ReadIndex on empty dir = nil error; want error")
	}
}
