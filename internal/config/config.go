package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Mix      MixConfig      `mapstructure:"mix"`
	Generate GenerateConfig `mapstructure:"generate"`
	LogLevel string         `mapstructure:"log_level"`
}

type PathsConfig struct {
	VoiceInventory      string `mapstructure:"voice_inventory"`
	BackgroundInventory string `mapstructure:"background_inventory"`
	BaseDir             string `mapstructure:"base_dir"`
}

type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
}

type MixConfig struct {
	PaddingProbability   float64 `mapstructure:"padding_probability"`
	MaxPadFraction       float64 `mapstructure:"max_pad_fraction"`
	EndPadSeconds        float64 `mapstructure:"end_pad_seconds"`
	PartitionBackgrounds bool    `mapstructure:"partition_backgrounds"`
}

type GenerateConfig struct {
	Seed     int64 `mapstructure:"seed"`
	Progress bool  `mapstructure:"progress"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			VoiceInventory:      "all_voices.json",
			BackgroundInventory: "all_backgrounds.json",
			BaseDir:             ".",
		},
		Audio: AudioConfig{
			SampleRate: 16000,
		},
		Mix: MixConfig{
			PaddingProbability:   0.1,
			MaxPadFraction:       0.2,
			EndPadSeconds:        0.01,
			PartitionBackgrounds: true,
		},
		Generate: GenerateConfig{
			Seed:     9257042,
			Progress: true,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-voice-inventory", defaults.Paths.VoiceInventory, "Voice inventory JSON ({\"voice\": [paths...]})")
	fs.String("paths-background-inventory", defaults.Paths.BackgroundInventory, "Background inventory JSON ([{\"sample\": path}])")
	fs.String("paths-base-dir", defaults.Paths.BaseDir, "Directory that relative inventory paths resolve against")
	fs.Int("audio-sample-rate", defaults.Audio.SampleRate, "Sample rate shared by every input and output clip")
	fs.Float64("mix-padding-probability", defaults.Mix.PaddingProbability, "Probability of drawing a start or end silence pad")
	fs.Float64("mix-max-pad-fraction", defaults.Mix.MaxPadFraction, "Longest drawn pad as a fraction of the speech duration")
	fs.Float64("mix-end-pad-seconds", defaults.Mix.EndPadSeconds, "Trailing silence when no end pad is drawn")
	fs.Bool("mix-partition-backgrounds", defaults.Mix.PartitionBackgrounds, "Apply the partition mask to background clips too")
	fs.Bool("generate-progress", defaults.Generate.Progress, "Show a progress bar when stderr is a terminal")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("NOISYSPEECH")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("noisyspeech")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings no run could use.
func (c Config) Validate() error {
	var errs []error

	if c.Paths.VoiceInventory == "" {
		errs = append(errs, errors.New("paths.voice_inventory is required"))
	}
	if c.Paths.BackgroundInventory == "" {
		errs = append(errs, errors.New("paths.background_inventory is required"))
	}
	if c.Audio.SampleRate < 1 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate))
	}
	if p := c.Mix.PaddingProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("mix.padding_probability must be in [0, 1], got %v", p))
	}
	if c.Mix.MaxPadFraction < 0 {
		errs = append(errs, fmt.Errorf("mix.max_pad_fraction must not be negative, got %v", c.Mix.MaxPadFraction))
	}
	if c.Mix.EndPadSeconds < 0 {
		errs = append(errs, fmt.Errorf("mix.end_pad_seconds must not be negative, got %v", c.Mix.EndPadSeconds))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.voice_inventory", c.Paths.VoiceInventory)
	v.SetDefault("paths.background_inventory", c.Paths.BackgroundInventory)
	v.SetDefault("paths.base_dir", c.Paths.BaseDir)
	v.SetDefault("audio.sample_rate", c.Audio.SampleRate)
	v.SetDefault("mix.padding_probability", c.Mix.PaddingProbability)
	v.SetDefault("mix.max_pad_fraction", c.Mix.MaxPadFraction)
	v.SetDefault("mix.end_pad_seconds", c.Mix.EndPadSeconds)
	v.SetDefault("mix.partition_backgrounds", c.Mix.PartitionBackgrounds)
	v.SetDefault("generate.seed", c.Generate.Seed)
	v.SetDefault("generate.progress", c.Generate.Progress)
	v.SetDefault("log_level", c.LogLevel)
}

// flagKeys maps config keys to the flags that override them. Flags missing
// from the bound set (command-local ones such as --seed) are skipped.
var flagKeys = []struct {
	key  string
	flag string
}{
	{"paths.voice_inventory", "paths-voice-inventory"},
	{"paths.background_inventory", "paths-background-inventory"},
	{"paths.base_dir", "paths-base-dir"},
	{"audio.sample_rate", "audio-sample-rate"},
	{"mix.padding_probability", "mix-padding-probability"},
	{"mix.max_pad_fraction", "mix-max-pad-fraction"},
	{"mix.end_pad_seconds", "mix-end-pad-seconds"},
	{"mix.partition_backgrounds", "mix-partition-backgrounds"},
	{"generate.seed", "seed"},
	{"generate.progress", "generate-progress"},
	{"log_level", "log-level"},
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("%s: %w", fk.flag, err)
		}
	}

	return nil
}
