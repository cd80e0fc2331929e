// Package config loads reporter settings from defaults, a YAML file, .env and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "AIREPORTER"

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model       string  `mapstructure:"model" yaml:"model"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	OllamaHost     string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Input and output
	InputPath   string `mapstructure:"input_path" yaml:"input_path"`
	DSN         string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Query       string `mapstructure:"query" yaml:"query,omitempty"`
	SQLDriver   string `mapstructure:"sql_driver" yaml:"sql_driver,omitempty"`
	OutputPath  string `mapstructure:"output_path" yaml:"output_path"`
	ChartPath   string `mapstructure:"chart_path" yaml:"chart_path"`
	UniqueChart bool   `mapstructure:"unique_chart" yaml:"unique_chart"`
	ReportTitle string `mapstructure:"report_title" yaml:"report_title"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

var defaults = map[string]any{
	"api_key":          "",
	"provider":         "openai",
	"base_url":         "",
	"model":            "gpt-4o",
	"max_tokens":       1500,
	"temperature":      0.7,
	"http_timeout_sec": 60,
	"ollama_host":      "http://127.0.0.1:11434",
	"input_path":       "data/Heart.csv",
	"dsn":              "",
	"query":            "",
	"sql_driver":       "",
	"output_path":      "Heart_Disease_Analysis_Report.pdf",
	"chart_path":       "diagnosis_distribution.png",
	"unique_chart":     false,
	"report_title":     "Heart Disease Analysis Report",
	"log_level":        "info",
	"log_file":         "",
}

// Dir returns ~/.ai-reporter.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ai-reporter"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ai-reporter/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the
// caller on top. A .env file in the working directory is loaded first and
// never overrides variables that are already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// the conventional OpenAI variable works without the prefix
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
