package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"corrscreen/adapters/datareadiness/coercer"
	"corrscreen/adapters/excel"
	"corrscreen/domain/correlation"
	"corrscreen/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CORRSCREEN_MAX_SELECTED
const EnvPrefix = "CORRSCREEN"

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the complete application configuration
type Config struct {
	MaxSelected           int         `mapstructure:"max_selected"`
	MinRowsForPlot        int         `mapstructure:"min_rows_for_plot"`
	SignificanceThreshold float64     `mapstructure:"significance_threshold"`
	HeadRows              int         `mapstructure:"head_rows"`
	Workers               int         `mapstructure:"workers"`
	LogLevel              string      `mapstructure:"log_level"`
	Format                string      `mapstructure:"format"`
	Ledger                string      `mapstructure:"ledger"`   // SQLite run ledger path; empty disables it
	PlotDir               string      `mapstructure:"plot_dir"` // PNG figures are written here when set
	Input                 InputConfig `mapstructure:"input"`
}

// InputConfig holds file reading settings
type InputConfig struct {
	Sheet            string   `mapstructure:"sheet"`
	Delimiter        string   `mapstructure:"delimiter"`
	NumericThreshold float64  `mapstructure:"numeric_threshold"`
	LenientNumbers   bool     `mapstructure:"lenient_numbers"`
	MissingTokens    []string `mapstructure:"missing_tokens"`
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"max-selected": "max_selected",
	"min-rows":     "min_rows_for_plot",
	"head-rows":    "head_rows",
	"workers":      "workers",
	"format":       "format",
	"log-level":    "log_level",
	"ledger":       "ledger",
	"plot-dir":     "plot_dir",
	"sheet":        "input.sheet",
	"delimiter":    "input.delimiter",
}

// Load reads configuration from defaults, an optional YAML file, the
// environment and the given flags, then validates it.
// Precedence: flags > env > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", cfgFile)
		}
	} else {
		v.SetConfigName("corrscreen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.corrscreen")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read config file")
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag %s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "unable to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	coercion := coercer.DefaultCoercionConfig()

	v.SetDefault("max_selected", correlation.DefaultMaxSelected)
	v.SetDefault("min_rows_for_plot", correlation.DefaultMinRowsForPlot)
	v.SetDefault("significance_threshold", correlation.DefaultSignificanceThreshold)
	v.SetDefault("head_rows", 25)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("log_level", "info")
	v.SetDefault("format", FormatText)
	v.SetDefault("ledger", "")
	v.SetDefault("plot_dir", "")
	v.SetDefault("input.sheet", "")
	v.SetDefault("input.delimiter", "")
	v.SetDefault("input.numeric_threshold", coercion.NumericThreshold)
	v.SetDefault("input.lenient_numbers", coercion.LenientNumbers)
	v.SetDefault("input.missing_tokens", coercion.MissingTokens)
}

// Validate checks every setting
func (c *Config) Validate() error {
	if c.MaxSelected <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("max_selected must be positive, got %d", c.MaxSelected))
	}
	if c.MinRowsForPlot < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("min_rows_for_plot must not be negative, got %d", c.MinRowsForPlot))
	}
	if c.SignificanceThreshold != correlation.DefaultSignificanceThreshold {
		return errors.ConfigInvalid(fmt.Sprintf("significance_threshold is fixed at %g", correlation.DefaultSignificanceThreshold))
	}
	if c.HeadRows < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("head_rows must not be negative, got %d", c.HeadRows))
	}
	if c.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("workers must be at least 1, got %d", c.Workers))
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown format %q (want text or json)", c.Format))
	}
	if !(c.Input.NumericThreshold > 0 && c.Input.NumericThreshold <= 1) {
		return errors.ConfigInvalid(fmt.Sprintf("input.numeric_threshold must be in (0, 1], got %g", c.Input.NumericThreshold))
	}
	return nil
}

// Selection returns the selector settings
func (c *Config) Selection() correlation.SelectionConfig {
	return correlation.SelectionConfig{
		SignificanceThreshold: c.SignificanceThreshold,
		MaxSelected:           c.MaxSelected,
		MinRowsForPlot:        c.MinRowsForPlot,
	}
}

// Reader returns the reader settings for path
func (c *Config) Reader(path string) excel.ReaderConfig {
	rc := excel.DefaultReaderConfig(path)
	rc.Sheet = c.Input.Sheet
	rc.Delimiter = c.Input.Delimiter
	rc.CoercionConfig.NumericThreshold = c.Input.NumericThreshold
	rc.CoercionConfig.LenientNumbers = c.Input.LenientNumbers
	if len(c.Input.MissingTokens) > 0 {
		rc.CoercionConfig.MissingTokens = c.Input.MissingTokens
	}
	return rc
}

// LoadDotEnv loads .env style files into the environment. Missing files are
// ignored; existing variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to load %s", f)
		}
	}
	return nil
}
