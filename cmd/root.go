package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ai-reporter/internal/ai"
	cfgpkg "github.com/KaramelBytes/ai-reporter/internal/config"
	"github.com/KaramelBytes/ai-reporter/internal/logger"
)

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagHTTPTimeoutSec int
	flagProvider       string
	flagModel          string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "aireporter",
	Short: "AI Reporter: turn tabular data into an AI-narrated PDF report",
	Long: `AI Reporter loads a CSV, TSV, XLSX file or SQL query result, cleans and
aggregates it, asks an LLM for a narrative and writes a PDF with the
narrative, a diagnosis chart and the aggregated table.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ai-reporter/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: openai, openrouter, ollama or eino (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("provider") && flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if f.Changed("model") && flagModel != "" {
		cfg.Model = flagModel
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}

	if err := applyLocalCatalog(); err != nil {
		logger.Log.WithError(err).Warn("ignoring local model catalog")
	}
}

// catalogPath is where `models sync` persists the catalog.
func catalogPath() (string, error) {
	dir, err := cfgpkg.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "models.json"), nil
}

// applyLocalCatalog loads ~/.ai-reporter/models.json, when present, in place of
// the built-in catalog.
func applyLocalCatalog() error {
	path, err := catalogPath()
	if err != nil {
		return err
	}
	m, err := ai.LoadCatalogFromJSON(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(m) == 0 {
		return nil
	}
	ai.OverrideCatalog(m)
	logger.Log.WithField("models", len(m)).Debug("loaded local model catalog")
	return nil
}
