package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// GobConfig configures the gob/json summary writer.
type GobConfig struct {
	RootPath string `yaml:"root_path" toml:"root_path"`
}

// TextConfig configures the plain text report writer.
type TextConfig struct {
	RootPath string `yaml:"root_path" toml:"root_path"`
}

// ChartConfig configures the PNG chart writer.
type ChartConfig struct {
	RootPath string `yaml:"root_path" toml:"root_path"`
	Width    int    `yaml:"width" toml:"width"`
	Height   int    `yaml:"height" toml:"height"`
}

// ClickHouseConfig holds the connection settings for the ClickHouse writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Database string `yaml:"database" toml:"database"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
}

// NATSConfig configures the NATS summary publisher.
type NATSConfig struct {
	URL     string `yaml:"url" toml:"url"`
	Subject string `yaml:"subject" toml:"subject"`
}

// WriterDef defines a single summary writer.
type WriterDef struct {
	Type       string           `yaml:"type" toml:"type"`
	Enabled    bool             `yaml:"enabled" toml:"enabled"`
	Gob        GobConfig        `yaml:"gob" toml:"gob"`
	Text       TextConfig       `yaml:"text" toml:"text"`
	Chart      ChartConfig      `yaml:"chart" toml:"chart"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse" toml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats" toml:"nats"`
}

// APIConfig configures the HTTP API that serves the finished summary.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Writers []WriterDef `yaml:"writers" toml:"writers"`
	API     APIConfig   `yaml:"api" toml:"api"`
}

const (
	defaultRootPath    = "output"
	defaultChartWidth  = 1024
	defaultChartHeight = 768
	defaultNATSSubject = "pcapspectra.summary"
	defaultClickPort   = 9000
	defaultListenAddr  = ":8080"
)

// Default returns the configuration used when no config file is given: a
// single text report in ./output.
func Default() *Config {
	cfg := &Config{
		Writers: []WriterDef{{Type: "text", Enabled: true}},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the configuration from a YAML or TOML file; the format is
// chosen by the file extension.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Writers {
		w := &c.Writers[i]
		if w.Gob.RootPath == "" {
			w.Gob.RootPath = defaultRootPath
		}
		if w.Text.RootPath == "" {
			w.Text.RootPath = defaultRootPath
		}
		if w.Chart.RootPath == "" {
			w.Chart.RootPath = defaultRootPath
		}
		if w.Chart.Width <= 0 {
			w.Chart.Width = defaultChartWidth
		}
		if w.Chart.Height <= 0 {
			w.Chart.Height = defaultChartHeight
		}
		if w.ClickHouse.Port == 0 {
			w.ClickHouse.Port = defaultClickPort
		}
		if w.NATS.Subject == "" {
			w.NATS.Subject = defaultNATSSubject
		}
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = defaultListenAddr
	}
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	for i, w := range c.Writers {
		if w.Type == "" {
			return fmt.Errorf("writer %d: missing type", i)
		}
		if !w.Enabled {
			continue
		}
		switch w.Type {
		case "clickhouse":
			if w.ClickHouse.Host == "" {
				return fmt.Errorf("writer %d: clickhouse host is required", i)
			}
		case "nats":
			if w.NATS.URL == "" {
				return fmt.Errorf("writer %d: nats url is required", i)
			}
		}
	}
	return nil
}
