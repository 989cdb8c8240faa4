package config

import (
	"errors"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/cleaner"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the base name looked up in the search directory when no config file is given.
const FileName = "sales-report"

type Config struct {
	Input  InputConfig    `mapstructure:"input"`
	Layout cleaner.Layout `mapstructure:"layout"`
	Output OutputConfig   `mapstructure:"output"`
	Report ReportConfig   `mapstructure:"report"`
	Charts ChartsConfig   `mapstructure:"charts"`
	Log    LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty when defaults and flags were enough.
	File string `mapstructure:"-"`
}

type InputConfig struct {
	Path      string `mapstructure:"path" validate:"required"`
	Delimiter string `mapstructure:"delimiter" validate:"oneof=auto tab comma"`
	Sheet     string `mapstructure:"sheet"`
}

type OutputConfig struct {
	Path               string `mapstructure:"path" validate:"required"`
	VisualizationsPath string `mapstructure:"visualizations_path"`
	KeepVisualizations bool   `mapstructure:"keep_visualizations"`
}

type ReportConfig struct {
	Title        string   `mapstructure:"title"`
	Year         int      `mapstructure:"year" validate:"omitempty,gte=1900,lte=2999"`
	TopCustomers int      `mapstructure:"top_customers" validate:"gte=1"`
	PieThreshold int64    `mapstructure:"pie_threshold" validate:"gte=0"`
	FacetGroups  []string `mapstructure:"facet_groups" validate:"dive,required"`
}

type ChartsConfig struct {
	Width  float64 `mapstructure:"width" validate:"gt=0"`
	Height float64 `mapstructure:"height" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Options tells LoadConfig where to look for overrides.
type Options struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// SearchDir is scanned for sales-report.{yaml,yml,toml,json} when Path is empty.
	SearchDir string
	// Flags are bound onto their config keys; only flags that were set override.
	Flags *pflag.FlagSet
}

// FlagKeys maps CLI flag names onto config keys.
var FlagKeys = map[string]string{
	"input":     "input.path",
	"output":    "output.path",
	"year":      "report.year",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	layout := cleaner.DefaultLayout()

	v.SetDefault("input.path", "Data/Sales and Credits by Store.csv")
	v.SetDefault("input.delimiter", "auto")
	v.SetDefault("input.sheet", "")

	v.SetDefault("layout.header_rows", layout.HeaderRows)
	v.SetDefault("layout.footer_rows", layout.FooterRows)
	v.SetDefault("layout.year_row", layout.YearRow)
	v.SetDefault("layout.month_row", layout.MonthRow)
	v.SetDefault("layout.group_column", layout.GroupColumn)
	v.SetDefault("layout.customer_column", layout.CustomerColumn)
	v.SetDefault("layout.product_column", layout.ProductColumn)
	v.SetDefault("layout.first_value_column", layout.FirstValueColumn)

	v.SetDefault("output.path", "sales_report.pdf")
	v.SetDefault("output.visualizations_path", "visualizations.pdf")
	v.SetDefault("output.keep_visualizations", false)

	v.SetDefault("report.title", "")
	v.SetDefault("report.year", 0)
	v.SetDefault("report.top_customers", 3)
	v.SetDefault("report.pie_threshold", 1000)
	v.SetDefault("report.facet_groups", []string{"Whole Foods CO", "Safeway CO", "King Soopers"})

	v.SetDefault("charts.width", 11.0)
	v.SetDefault("charts.height", 8.5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Default returns the configuration used when no file or flag overrides anything.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// LoadConfig resolves defaults, then the config file, then explicitly set flags.
// Environment variables are never consulted.
func LoadConfig(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.Path != "" {
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.WrapError(domain.ErrIO, "config", fmt.Errorf("failed to read config file: %w", err))
		}
	} else {
		dir := opts.SearchDir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, domain.WrapError(domain.ErrIO, "config", fmt.Errorf("failed to read config file: %w", err))
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}
