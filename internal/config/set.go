package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"api_key", "provider", "base_url", "model", "max_tokens", "temperature",
		"http_timeout_sec", "ollama_host", "input_path", "dsn", "query", "sql_driver",
		"output_path", "chart_path", "unique_chart", "report_title", "log_level", "log_file",
	}
}

// Set assigns one key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "api_key":
		c.APIKey = val
	case "provider":
		p := strings.ToLower(strings.TrimSpace(val))
		switch p {
		case "local":
			p = "ollama"
		case "openai", "openrouter", "ollama", "eino":
		default:
			return fmt.Errorf("invalid provider: %s (use openai, openrouter, ollama or eino)", val)
		}
		c.Provider = p
	case "base_url":
		c.BaseURL = val
	case "model":
		c.Model = val
	case "max_tokens":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_tokens: %v", val)
		}
		c.MaxTokens = i
	case "temperature":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid float for temperature: %v", val)
		}
		c.Temperature = f
	case "http_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
		}
		c.HTTPTimeoutSec = i
	case "ollama_host":
		c.OllamaHost = val
	case "input_path":
		c.InputPath = val
	case "dsn":
		c.DSN = val
	case "query":
		c.Query = val
	case "sql_driver":
		c.SQLDriver = val
	case "output_path":
		c.OutputPath = val
	case "chart_path":
		c.ChartPath = val
	case "unique_chart":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for unique_chart: %v", val)
		}
		c.UniqueChart = b
	case "report_title":
		c.ReportTitle = val
	case "log_level":
		c.LogLevel = val
	case "log_file":
		c.LogFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
