package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ai-reporter/internal/ingest"
	"github.com/KaramelBytes/ai-reporter/internal/processing"
	"github.com/KaramelBytes/ai-reporter/internal/utils"
)

var (
	anaOutputPath string
	anaDelimiter  string
	anaSheetName  string
	anaRaw        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Clean and aggregate a CSV/TSV/XLSX file without calling the LLM",
	Example: `  aireporter analyze data/Heart.csv
  aireporter analyze data/campaigns.csv -o aggregated.csv
  aireporter analyze data/report.xlsx --sheet Q3 --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		t, err := ingest.LoadFile(args[0], ingest.Options{
			Delimiter: parseDelimiter(anaDelimiter),
			Sheet:     anaSheetName,
		})
		if err != nil {
			return err
		}
		t = processing.Clean(t)
		shape := processing.ShapeGeneric
		if !anaRaw {
			t, shape = processing.Aggregate(t)
		}

		if anaOutputPath != "" {
			data := t.Markdown()
			if strings.EqualFold(filepath.Ext(anaOutputPath), ".csv") {
				data = t.CSV()
			}
			if err := utils.EnsureParentDir(anaOutputPath); err != nil {
				return err
			}
			if err := os.WriteFile(anaOutputPath, []byte(data), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %d rows (%s) to %s\n", t.NumRows(), shape, anaOutputPath)
			return nil
		}
		fmt.Fprintf(out, "Detected shape: %s (%d rows x %d columns)\n\n", shape, t.NumRows(), t.NumCols())
		fmt.Fprintln(out, t.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the table to a file (.csv as CSV, anything else as Markdown)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',', ';' or 'tab' (default: sniffed)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX sheet name (default: first sheet)")
	analyzeCmd.Flags().BoolVar(&anaRaw, "raw", false, "skip aggregation and print the cleaned table")
}

