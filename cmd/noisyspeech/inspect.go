package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/example/go-noisy-speech/internal/audio"
	"github.com/example/go-noisy-speech/internal/manifest"
	"github.com/example/go-noisy-speech/internal/synth"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect <directory>",
		Short: "Summarize the samples recorded in a run's index.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of samples to list (0 lists all)")

	return cmd
}

func runInspect(w io.Writer, dir string, limit int) error {
	idx, err := manifest.ReadIndex(dir)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "run %s: seed %d, mask %q, %d Hz, %d of %d voices synthesized\n",
		idx.Run.ID, idx.Run.Seed, idx.Run.Mask, idx.Run.SampleRate, len(idx.Samples), idx.Run.Voices)

	samples := idx.Samples
	if limit > 0 && len(samples) > limit {
		samples = samples[:limit]
	}

	headers := []string{"N", "FILE", "SIZE", "SPEECH", "TOTAL", "START", "STOP", "PEAK", "VOICE"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(samples))
	var total float64
	for _, s := range idx.Samples {
		total += s.Layout.TotalDuration
	}
	for _, s := range samples {
		row, err := inspectRow(dir, idx.Run.SampleRate, s)
		if err != nil {
			return fmt.Errorf("sample %d: %w", s.Index, err)
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		_, _ = fmt.Fprintln(w, renderTable(headers, rows, aligns))
	}
	if len(samples) < len(idx.Samples) {
		_, _ = fmt.Fprintf(w, "... %d more\n", len(idx.Samples)-len(samples))
	}
	_, _ = fmt.Fprintf(w, "total audio: %s\n", formatSeconds(total))

	return nil
}

func inspectRow(dir string, sampleRate int, s synth.Sample) ([]string, error) {
	path := sampleAudioPath(dir, s.Audio)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pcm, err := audio.DecodeWAV(data, sampleRate)
	if err != nil {
		return nil, err
	}

	return []string{
		strconv.Itoa(s.Index),
		filepath.Base(path),
		humanize.Bytes(uint64(len(data))),
		formatSeconds(s.Layout.SpeechDuration),
		formatSeconds(s.Layout.TotalDuration),
		formatSeconds(s.Layout.Start),
		formatSeconds(s.Layout.Stop),
		formatDBFS(audio.PeakDBFS(pcm)),
		s.Voice,
	}, nil
}

// sampleAudioPath prefers the recorded path and falls back to the clip's
// name inside dir, so a moved run directory can still be inspected.
func sampleAudioPath(dir, recorded string) string {
	if _, err := os.Stat(recorded); err == nil || !errors.Is(err, os.ErrNotExist) {
		return recorded
	}
	return filepath.Join(dir, filepath.Base(recorded))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + "s"
}

func formatDBFS(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " dBFS"
}
