package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/example/go-noisy-speech/internal/config"
	"github.com/example/go-noisy-speech/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var mask string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check inventories, clip formats and transcripts before generating",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			return runDoctor(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, mask)
		},
	}

	cmd.Flags().StringVar(&mask, "mask", "", "Only check the shard this mask selects")

	return cmd
}

func runDoctor(stdout, stderr io.Writer, cfg config.Config, mask string) error {
	result := doctor.Run(doctor.Config{
		VoiceInventory:       cfg.Paths.VoiceInventory,
		BackgroundInventory:  cfg.Paths.BackgroundInventory,
		BaseDir:              cfg.Paths.BaseDir,
		SampleRate:           cfg.Audio.SampleRate,
		Mask:                 mask,
		PartitionBackgrounds: cfg.Mix.PartitionBackgrounds,
	}, stdout)

	if result.Failed() {
		for _, f := range result.Failures() {
			_, _ = fmt.Fprintf(stderr, "FAIL: %s\n", f)
		}

		return errors.New("doctor checks failed")
	}

	_, _ = fmt.Fprintln(stdout, "doctor checks passed")

	return nil
}
