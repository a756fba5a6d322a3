package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "noisyspeech.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.VoiceInventory != "all_voices.json" {
		t.Errorf("VoiceInventory = %q; want %q", cfg.Paths.VoiceInventory, "all_voices.json")
	}

	if cfg.Paths.BackgroundInventory != "all_backgrounds.json" {
		t.Errorf("BackgroundInventory = %q; want %q", cfg.Paths.BackgroundInventory, "all_backgrounds.json")
	}

	if cfg.Paths.BaseDir != "." {
		t.Errorf("BaseDir = %q; want %q", cfg.Paths.BaseDir, ".")
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("Audio.SampleRate = %d; want 16000", cfg.Audio.SampleRate)
	}

	if cfg.Mix.PaddingProbability != 0.1 {
		t.Errorf("Mix.PaddingProbability = %v; want 0.1", cfg.Mix.PaddingProbability)
	}

	if cfg.Mix.MaxPadFraction != 0.2 {
		t.Errorf("Mix.MaxPadFraction = %v; want 0.2", cfg.Mix.MaxPadFraction)
	}

	if cfg.Mix.EndPadSeconds != 0.01 {
		t.Errorf("Mix.EndPadSeconds = %v; want 0.01", cfg.Mix.EndPadSeconds)
	}

	if !cfg.Mix.PartitionBackgrounds {
		t.Error("Mix.PartitionBackgrounds = false; want true")
	}

	if cfg.Generate.Seed != 9257042 {
		t.Errorf("Generate.Seed = %d; want 9257042", cfg.Generate.Seed)
	}

	if !cfg.Generate.Progress {
		t.Error("Generate.Progress = false; want true")
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v; want nil", err)
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	tests := []struct {
		flag string
		want string
	}{
		{"paths-voice-inventory", "all_voices.json"},
		{"paths-background-inventory", "all_backgrounds.json"},
		{"paths-base-dir", "."},
		{"audio-sample-rate", "16000"},
		{"mix-padding-probability", "0.1"},
		{"mix-max-pad-fraction", "0.2"},
		{"mix-end-pad-seconds", "0.01"},
		{"mix-partition-backgrounds", "true"},
		{"generate-progress", "true"},
		{"log-level", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := fs.Lookup(tt.flag)
			if f == nil {
				t.Fatalf("flag --%s not registered", tt.flag)
			}

			if f.DefValue != tt.want {
				t.Errorf("--%s default = %q; want %q", tt.flag, f.DefValue, tt.want)
			}
		})
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{Cmd: newFlagBinder(defaults), Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg != defaults {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_WithoutFlags(t *testing.T) {
	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg != defaults {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	err := binder.fs.Parse([]string{
		"--paths-voice-inventory", "shard/voices.json",
		"--audio-sample-rate", "8000",
		"--mix-padding-probability", "0.5",
		"--mix-partition-backgrounds=false",
		"--log-level", "debug",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Paths.VoiceInventory != "shard/voices.json" {
		t.Errorf("VoiceInventory = %q; want %q", cfg.Paths.VoiceInventory, "shard/voices.json")
	}

	if cfg.Audio.SampleRate != 8000 {
		t.Errorf("Audio.SampleRate = %d; want 8000", cfg.Audio.SampleRate)
	}

	if cfg.Mix.PaddingProbability != 0.5 {
		t.Errorf("Mix.PaddingProbability = %v; want 0.5", cfg.Mix.PaddingProbability)
	}

	if cfg.Mix.PartitionBackgrounds {
		t.Error("Mix.PartitionBackgrounds = true; want false")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}

	if cfg.Paths.BackgroundInventory != defaults.Paths.BackgroundInventory {
		t.Errorf("BackgroundInventory = %q; want default %q", cfg.Paths.BackgroundInventory, defaults.Paths.BackgroundInventory)
	}
}

func TestLoad_SeedFlag(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)
	binder.fs.Int64("seed", defaults.Generate.Seed, "seed")

	if err := binder.fs.Parse([]string{"--seed", "42"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Generate.Seed != 42 {
		t.Errorf("Generate.Seed = %d; want 42", cfg.Generate.Seed)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NOISYSPEECH_LOG_LEVEL", "warn")
	t.Setenv("NOISYSPEECH_AUDIO_SAMPLE_RATE", "22050")
	t.Setenv("NOISYSPEECH_PATHS_BASE_DIR", "/data/corpus")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{Cmd: newFlagBinder(defaults), Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("Audio.SampleRate = %d; want 22050", cfg.Audio.SampleRate)
	}

	if cfg.Paths.BaseDir != "/data/corpus" {
		t.Errorf("BaseDir = %q; want %q", cfg.Paths.BaseDir, "/data/corpus")
	}
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("NOISYSPEECH_LOG_LEVEL", "warn")

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	if err := binder.fs.Parse([]string{"--log-level", "error"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, strings.Join([]string{
		"paths:",
		"  voice_inventory: lists/voices.json",
		"  base_dir: /corpus",
		"mix:",
		"  padding_probability: 0.25",
		"  end_pad_seconds: 0",
		"generate:",
		"  seed: 7",
		"log_level: debug",
		"",
	}, "\n"))

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{Cmd: newFlagBinder(defaults), ConfigFile: path, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Paths.VoiceInventory != "lists/voices.json" {
		t.Errorf("VoiceInventory = %q; want %q", cfg.Paths.VoiceInventory, "lists/voices.json")
	}

	if cfg.Paths.BaseDir != "/corpus" {
		t.Errorf("BaseDir = %q; want %q", cfg.Paths.BaseDir, "/corpus")
	}

	if cfg.Mix.PaddingProbability != 0.25 {
		t.Errorf("Mix.PaddingProbability = %v; want 0.25", cfg.Mix.PaddingProbability)
	}

	if cfg.Mix.EndPadSeconds != 0 {
		t.Errorf("Mix.EndPadSeconds = %v; want 0", cfg.Mix.EndPadSeconds)
	}

	if cfg.Generate.Seed != 7 {
		t.Errorf("Generate.Seed = %d; want 7", cfg.Generate.Seed)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}

	if cfg.Audio.SampleRate != defaults.Audio.SampleRate {
		t.Errorf("Audio.SampleRate = %d; want default %d", cfg.Audio.SampleRate, defaults.Audio.SampleRate)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := Load(LoadOptions{ConfigFile: path, Defaults: DefaultConfig()})
	if err == nil {
		t.Fatal("Load with missing config file: want error, got nil")
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	path := writeConfigFile(t, "paths: [unterminated\n")

	_, err := Load(LoadOptions{ConfigFile: path, Defaults: DefaultConfig()})
	if err == nil {
		t.Fatal("Load with malformed config file: want error, got nil")
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing voice inventory", func(c *Config) { c.Paths.VoiceInventory = "" }, "paths.voice_inventory"},
		{"missing background inventory", func(c *Config) { c.Paths.BackgroundInventory = "" }, "paths.background_inventory"},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }, "audio.sample_rate"},
		{"probability above one", func(c *Config) { c.Mix.PaddingProbability = 1.5 }, "mix.padding_probability"},
		{"negative probability", func(c *Config) { c.Mix.PaddingProbability = -0.1 }, "mix.padding_probability"},
		{"negative pad fraction", func(c *Config) { c.Mix.MaxPadFraction = -1 }, "mix.max_pad_fraction"},
		{"negative end pad", func(c *Config) { c.Mix.EndPadSeconds = -0.01 }, "mix.end_pad_seconds"},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v; want nil", err)
				}

				return
			}

			if err == nil {
				t.Fatalf("Validate() = nil; want error containing %q", tt.wantErr)
			}

			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.VoiceInventory = ""
	cfg.Audio.SampleRate = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil; want error")
	}

	for _, want := range []string{"paths.voice_inventory", "audio.sample_rate"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q; want it to contain %q", err, want)
		}
	}
}

// --- ParseLogLevel ---

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLogLevel(%q) = %v, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseLogLevel(%q): %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v; want %v", tt.input, got, tt.want)
			}
		})
	}
}
