package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-noisy-speech/internal/config"
	"github.com/example/go-noisy-speech/internal/dataset"
	"github.com/example/go-noisy-speech/internal/synth"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newGenerateCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <directory> <mask>",
		Short: "Synthesize one noisy clip per voice selected by mask",
		Long: `Recreate <directory> and fill it with one mixed clip per voice whose
position in the voice inventory the mask selects ('x' include, 'o' exclude,
repeated cyclically). index.json and inventory.csv are written even when
synthesis stops early.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := dataset.Generate(ctx, generateOptions(cfg, args[0], args[1], progressWriter(cfg)))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s (run %s, %s of audio, rtf %.3f)\n",
				len(res.Samples), args[0], res.RunID, res.Timing.Audio.Round(time.Millisecond), res.Timing.RTF)

			return nil
		},
	}

	cmd.Flags().Int64("seed", defaults.Generate.Seed, "Seed for the run's random stream")

	return cmd
}

func generateOptions(cfg config.Config, dir, mask string, progress io.Writer) dataset.Options {
	return dataset.Options{
		Dir:                  dir,
		Mask:                 mask,
		Seed:                 cfg.Generate.Seed,
		VoiceInventory:       cfg.Paths.VoiceInventory,
		BackgroundInventory:  cfg.Paths.BackgroundInventory,
		BaseDir:              cfg.Paths.BaseDir,
		Params:               mixParams(cfg),
		PartitionBackgrounds: cfg.Mix.PartitionBackgrounds,
		Progress:             progress,
		Logger:               slog.Default(),
	}
}

func mixParams(cfg config.Config) synth.Params {
	p := synth.DefaultParams(cfg.Audio.SampleRate)
	p.PaddingProbability = cfg.Mix.PaddingProbability
	p.MaxPadFraction = cfg.Mix.MaxPadFraction
	p.EndPad = cfg.Mix.EndPadSeconds
	return p
}

// progressWriter returns stderr when a bar is wanted and stderr is a terminal.
func progressWriter(cfg config.Config) io.Writer {
	if !cfg.Generate.Progress {
		return nil
	}
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}
	return os.Stderr
}
