package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ai-reporter/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set AI Reporter configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "api_key: %s\n", mask(cfg.APIKey))
		fmt.Fprintf(out, "provider: %s\n", cfg.Provider)
		if cfg.BaseURL != "" {
			fmt.Fprintf(out, "base_url: %s\n", cfg.BaseURL)
		}
		fmt.Fprintf(out, "model: %s\n", cfg.Model)
		fmt.Fprintf(out, "max_tokens: %d\n", cfg.MaxTokens)
		fmt.Fprintf(out, "temperature: %.3f\n", cfg.Temperature)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		if cfg.Provider == "ollama" {
			fmt.Fprintf(out, "ollama_host: %s\n", cfg.OllamaHost)
		}
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		if cfg.DSN != "" {
			fmt.Fprintf(out, "dsn: %s\n", mask(cfg.DSN))
			fmt.Fprintf(out, "query: %s\n", cfg.Query)
		}
		if cfg.SQLDriver != "" {
			fmt.Fprintf(out, "sql_driver: %s\n", cfg.SQLDriver)
		}
		fmt.Fprintf(out, "output_path: %s\n", cfg.OutputPath)
		fmt.Fprintf(out, "chart_path: %s\n", cfg.ChartPath)
		fmt.Fprintf(out, "unique_chart: %t\n", cfg.UniqueChart)
		fmt.Fprintf(out, "report_title: %s\n", cfg.ReportTitle)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		if cfg.LogFile != "" {
			fmt.Fprintf(out, "log_file: %s\n", cfg.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk.\n\nKeys: " + strings.Join(cfgpkg.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// re-read the file so flag overrides are not persisted
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
