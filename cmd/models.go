package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ai-reporter/internal/ai"
	"github.com/KaramelBytes/ai-reporter/internal/utils"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage or inspect model catalog and pricing",
	Long: `Manage the model catalog used for cost estimates and context-window checks.

sync and fetch store the resulting catalog in ~/.ai-reporter/models.json,
which replaces the built-in catalog on later runs. reset removes it.`,
	Example: `  aireporter models show
  aireporter models sync --file ./models.json
  aireporter models sync --file ./models.json --merge
  aireporter models fetch --url https://example.com/models.json --merge
  aireporter models reset`,
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		// encoding/json sorts map keys
		b, err := utils.PrettyJSON(ai.Catalog())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return err
	},
}

var (
	syncPath  string
	syncMerge bool
)

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load model catalog/pricing from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFromJSON(syncPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return applyAndPersist(cmd.OutOrStdout(), m, syncMerge, "file")
	},
}

var (
	fetchURL   string
	fetchMerge bool
)

var modelsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch model catalog/pricing JSON from a URL and apply it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchURL == "" {
			return fmt.Errorf("--url is required")
		}
		client := &http.Client{Timeout: 20 * time.Second}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, fetchURL, nil)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
		}
		var m map[string]ai.ModelInfo
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		for k, v := range m {
			if v.Name == "" {
				v.Name = k
				m[k] = v
			}
		}
		return applyAndPersist(cmd.OutOrStdout(), m, fetchMerge, "fetched")
	},
}

var modelsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the stored catalog and go back to the built-in one",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := catalogPath()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove catalog: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed stored model catalog")
		return nil
	},
}

func applyAndPersist(out io.Writer, m map[string]ai.ModelInfo, merge bool, source string) error {
	if len(m) == 0 {
		return errors.New("catalog is empty")
	}
	if merge {
		ai.MergeCatalog(m)
		fmt.Fprintf(out, "Merged %s catalog (%d models)\n", source, len(m))
	} else {
		ai.OverrideCatalog(m)
		fmt.Fprintf(out, "Replaced model catalog with %s catalog (%d models)\n", source, len(m))
	}
	path, err := catalogPath()
	if err != nil {
		return err
	}
	if err := ai.SaveCatalogJSON(path, ai.Catalog()); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	fmt.Fprintf(out, "Saved catalog to %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsSyncCmd)
	modelsCmd.AddCommand(modelsFetchCmd)
	modelsCmd.AddCommand(modelsResetCmd)

	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to JSON catalog file")
	modelsSyncCmd.Flags().BoolVar(&syncMerge, "merge", false, "merge into existing catalog instead of replacing")

	modelsFetchCmd.Flags().StringVar(&fetchURL, "url", "", "URL to JSON catalog file")
	modelsFetchCmd.Flags().BoolVar(&fetchMerge, "merge", false, "merge into existing catalog instead of replacing")
}
