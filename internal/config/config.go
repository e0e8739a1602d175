package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MACD      MACD      `yaml:"macd"`
	Analysis  Analysis  `yaml:"analysis"`
	Store     Store     `yaml:"store"`
	Report    Report    `yaml:"report"`
	Collector Collector `yaml:"collector"`
}

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	d := yaml.NewDecoder(r)
	err := d.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func (c *Config) applyDefaults() {
	if c.MACD.Fast == 0 {
		c.MACD.Fast = 12
	}
	if c.MACD.Slow == 0 {
		c.MACD.Slow = 26
	}
	if c.MACD.Signal == 0 {
		c.MACD.Signal = 9
	}
	switch {
	case c.MACD.Warmup == 0:
		c.MACD.Warmup = c.MACD.Slow + c.MACD.Signal
	case c.MACD.Warmup < 0:
		c.MACD.Warmup = 0
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Store.Period == "" {
		c.Store.Period = "1d"
	}
	if c.Collector.LookbackDays == 0 {
		c.Collector.LookbackDays = 365
	}
}

type MACD struct {
	Fast   int `yaml:"fast"`
	Slow   int `yaml:"slow"`
	Signal int `yaml:"signal"`

	// Warmup is how many MACD points to consume before trusting crossover
	// signals. Zero means slow+signal; -1 disables the warm-up entirely.
	Warmup int `yaml:"warmup"`

	// MissingField picks the policy for bars without a close price:
	// "strict" (default) aborts the symbol, "permissive" drops the bar.
	MissingField string `yaml:"missing_field"`
}

func (m MACD) Strict() bool {
	return m.MissingField != "permissive"
}

type Analysis struct {
	// Workers bounds the per-symbol worker pool. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// MaxSymbols caps the universe for quick runs. Zero means no cap.
	MaxSymbols int `yaml:"max_symbols"`
}

type Store struct {
	Path    string `yaml:"path"`
	Period  string `yaml:"period"`
	Symbols string `yaml:"symbols"`
}

type Report struct {
	JSON    string `yaml:"json"`
	CSV     string `yaml:"csv"`
	PlotDir string `yaml:"plot_dir"`
}

type Collector struct {
	Schedule     string          `yaml:"schedule"`
	LookbackDays int             `yaml:"lookback_days"`
	RunOnStart   bool            `yaml:"run_on_start"`
	SourceRef    SourceReference `yaml:"source"`
}

// data source configs

type Source interface{}

type SourceReference struct {
	Source Source
}

func (w *SourceReference) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) == 0 {
		return nil
	}

	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return errors.New("invalid source yaml format")
	}

	key := value.Content[0].Value
	switch key {
	case "alpaca":
		var alpaca Alpaca
		if err := value.Content[1].Decode(&alpaca); err != nil {
			return fmt.Errorf("failed parsing alpaca source config: %w", err)
		}
		w.Source = alpaca
	case "csv":
		var csv CSV
		if err := value.Content[1].Decode(&csv); err != nil {
			return fmt.Errorf("failed parsing csv source config: %w", err)
		}
		w.Source = csv
	default:
		return fmt.Errorf("unknown source type: %s", key)
	}

	return nil
}

type Alpaca struct {
	BaseUrl string `yaml:"base_url"`
	ApiKey  string `yaml:"api_key"`
	Secret  string `yaml:"secret"`
}

type CSV struct {
	// Data maps symbol codes to bar csv files.
	Data map[string]string `yaml:"data"`
}
