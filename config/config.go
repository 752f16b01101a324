// Package config loads and validates the run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/gorates/timeseries"
)

// Roles a source can play in the pairwise correlation.
const (
	RoleIndex    = "index"
	RoleCurrency = "currency"
	RoleNone     = "none"
)

// EnvPrefix prefixes environment overrides, e.g. GORATES_LOG_LEVEL.
const EnvPrefix = "GORATES"

// Config is a complete analysis run.
type Config struct {
	LogLevel string   `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Output   Output   `mapstructure:"output" yaml:"output"`
	Sources  []Source `mapstructure:"sources" yaml:"sources" validate:"required,min=1,unique=Label,dive"`
	Plots    []Plot   `mapstructure:"plots" yaml:"plots,omitempty" validate:"dive"`

	// BaseDir resolves relative paths; it is the config file's directory.
	BaseDir string `mapstructure:"-" yaml:"-"`
}

// Output controls what a run writes.
type Output struct {
	Correlations    string  `mapstructure:"correlations" yaml:"correlations" validate:"required"`
	MetricsTextfile string  `mapstructure:"metrics_textfile" yaml:"metrics_textfile,omitempty"`
	FailOnError     bool    `mapstructure:"fail_on_error" yaml:"fail_on_error"`
	Alpha           float64 `mapstructure:"alpha" yaml:"alpha" validate:"gt=0,lt=1"`
	ACFLags         int     `mapstructure:"acf_lags" yaml:"acf_lags" validate:"gte=0"` // 0 disables
}

// Source is one rate series read from a CSV file.
type Source struct {
	Label       string `mapstructure:"label" yaml:"label" validate:"required"`
	File        string `mapstructure:"file" yaml:"file" validate:"required"`
	DateColumn  string `mapstructure:"date_column" yaml:"date_column" validate:"required"`
	ValueColumn string `mapstructure:"value_column" yaml:"value_column" validate:"required"`
	DateFormat  string `mapstructure:"date_format" yaml:"date_format"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter,omitempty" validate:"omitempty,len=1"`
	Role        string `mapstructure:"role" yaml:"role" validate:"omitempty,oneof=index currency none"`
}

// Plot is one chart of several sources.
type Plot struct {
	Title     string   `mapstructure:"title" yaml:"title" validate:"required"`
	File      string   `mapstructure:"file" yaml:"file" validate:"required"`
	Series    []string `mapstructure:"series" yaml:"series" validate:"required,min=1"`
	Normalize bool     `mapstructure:"normalize" yaml:"normalize"`
	YMin      *float64 `mapstructure:"y_min" yaml:"y_min,omitempty"`
	YMax      *float64 `mapstructure:"y_max" yaml:"y_max,omitempty"`
}

var validate = validator.New()

// Load reads a YAML config file, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("output.correlations", "correlations.csv")
	v.SetDefault("output.fail_on_error", false)
	v.SetDefault("output.alpha", 0.05)
	v.SetDefault("output.acf_lags", 10)
}

// Validate checks field constraints and cross references between plots and
// sources.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	labels := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		labels[s.Label] = true
	}

	var errs []error
	for _, s := range c.Sources {
		if _, err := timeseries.Layout(s.DateFormat); err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", s.Label, err))
		}
	}
	for _, p := range c.Plots {
		for _, name := range p.Series {
			if !labels[name] {
				errs = append(errs, fmt.Errorf("plot %q: unknown series %q", p.Title, name))
			}
		}
		if p.YMin != nil && p.YMax != nil && *p.YMin >= *p.YMax {
			errs = append(errs, fmt.Errorf("plot %q: y_min %v must be below y_max %v", p.Title, *p.YMin, *p.YMax))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Path resolves p against the config directory unless it is absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// SourcesWithRole returns the sources assigned to role, in config order.
func (c *Config) SourcesWithRole(role string) []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Role == role {
			out = append(out, s)
		}
	}
	return out
}

// DelimiterRune returns the field delimiter, ',' when unset.
func (s Source) DelimiterRune() rune {
	if s.Delimiter == "" {
		return ','
	}
	return []rune(s.Delimiter)[0]
}

// WriteExample writes Example() as YAML to path. It refuses to overwrite
// an existing file.
func WriteExample(path string) error {
	data, err := yaml.Marshal(Example())
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func floatPtr(v float64) *float64 {
	return &v
}

// Example returns the stock index versus currency analysis: S&P 500 and
// Dow 30 against Bitcoin, three USD exchange rates and the trade weighted
// dollar index.
func Example() *Config {
	yahoo := func(label, file, role string) Source {
		return Source{
			Label: label, File: file, Role: role,
			DateColumn: "Date", ValueColumn: "Adj Close", DateFormat: "%Y-%m-%d",
		}
	}
	fred := func(label, code string) Source {
		return Source{
			Label: label, File: "data/" + code + ".csv", Role: RoleCurrency,
			DateColumn: "DATE", ValueColumn: code, DateFormat: "%Y-%m-%d",
		}
	}

	return &Config{
		LogLevel: "info",
		Output: Output{
			Correlations: "correlations.csv",
			Alpha:        0.05,
			ACFLags:      10,
		},
		Sources: []Source{
			yahoo("S&P 500", "data/^GSPC.csv", RoleIndex),
			yahoo("Dow 30", "data/^DJI.csv", RoleIndex),
			yahoo("BTC to USD", "data/BTC-USD.csv", RoleCurrency),
			fred("CAN to USD", "DEXCAUS"),
			fred("CNY to USD", "DEXCHUS"),
			fred("JPY to USD", "DEXJPUS"),
			fred("U.S. Dollar Index", "DTWEXB"),
		},
		Plots: []Plot{
			{
				Title:     "BTC to USD against S&P 500 and Dow 30",
				File:      "btc-indexes-fig.png",
				Series:    []string{"S&P 500", "Dow 30", "BTC to USD"},
				Normalize: true,
				YMin:      floatPtr(0), YMax: floatPtr(1),
			},
			{
				Title:     "Currencies against S&P 500 and Dow 30",
				File:      "currencies-indexes-fig.png",
				Series:    []string{"S&P 500", "Dow 30", "CAN to USD", "CNY to USD", "JPY to USD"},
				Normalize: true,
				YMin:      floatPtr(0.7), YMax: floatPtr(1),
			},
			{
				Title:     "BTC to USD against U.S. Dollar Index",
				File:      "btc-dtwexb-fig.png",
				Series:    []string{"U.S. Dollar Index", "BTC to USD"},
				Normalize: true,
				YMin:      floatPtr(0), YMax: floatPtr(1),
			},
			{
				Title:     "U.S dollar against S&P 500 and Dow 30",
				File:      "sp-dow-dtwexb-fig.png",
				Series:    []string{"S&P 500", "Dow 30", "U.S. Dollar Index"},
				Normalize: true,
				YMin:      floatPtr(0.7), YMax: floatPtr(1),
			},
		},
	}
}
