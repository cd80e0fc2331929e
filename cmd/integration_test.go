package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ai-reporter/internal/ai"
	"github.com/KaramelBytes/ai-reporter/internal/ingest"
)

const campaignsCSV = `Date,Campaign_ID,Impressions,Clicks,Spend,Conversions
2024-01-01,A,1000,20,10.0,2
2024-01-01,B,500,10,5.5,0
2024-01-02,A,1000,20,10.0,2
2024-01-02,B,0,0,0.0,0
2024-01-03,B,500,0,4.5,0
`

const heartCSV = `age,sex,cp,trestbps,chol,fbs,restecg,thalach,exang,oldpeak,slope,ca,thal,target
63,1,3,145,233,1,0,150,0,2.3,0,0,1,1
37,1,2,130,250,0,1,187,0,3.5,0,0,2,1
41,0,1,130,204,0,0,172,0,1.4,2,0,2,0
56,1,1,120,236,0,1,178,0,0.8,2,0,2,1
`

// resetFlags clears values and Changed state that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate gives the test an empty HOME and working directory and no credentials.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("AIREPORTER_API_KEY", "")
	t.Setenv("AIREPORTER_BASE_URL", "")
	t.Setenv("AIREPORTER_PROVIDER", "")
	{
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	saved := ai.Catalog()
	t.Cleanup(func() { ai.OverrideCatalog(saved) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func writeFile(t *testing.T, path, data string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func requirePDF(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("%PDF-")), "not a PDF: %s", path)
}

func TestCLI_ReportWithoutAPIKey(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "data", "campaigns.csv"), campaignsCSV)
	output := filepath.Join(dir, "out", "report.pdf")
	chart := filepath.Join(dir, "chart.png")

	out := runCmd(t, "report", "--input", input, "--output", output, "--chart", chart)

	for _, want := range []string{
		"Starting AI Reporter...",
		"Loading data from " + input,
		"Processing data...",
		"Aggregated Data:",
		"shape: (2, 8)",
		"Generating AI insights...",
		"No API key configured",
		"Creating PDF report...",
		"✓ PDF Report saved to " + output,
	} {
		assert.Contains(t, out, want)
	}
	requirePDF(t, output)
	// no diagnosis column, so no chart
	assert.NoFileExists(t, chart)
}

func TestCLI_ReportDefaultsFromConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "data", "Heart.csv"), heartCSV)

	out := runCmd(t, "report")
	assert.Contains(t, out, "Loading data from data/Heart.csv")
	requirePDF(t, filepath.Join(dir, "Heart_Disease_Analysis_Report.pdf"))
	assert.FileExists(t, filepath.Join(dir, "diagnosis_distribution.png"))
}

func TestCLI_ReportUniqueChart(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "heart.csv"), heartCSV)

	runCmd(t, "report", "-i", input, "-o", filepath.Join(dir, "a.pdf"), "--chart", filepath.Join(dir, "charts", "dist.png"), "--unique-chart")
	runCmd(t, "report", "-i", input, "-o", filepath.Join(dir, "b.pdf"), "--chart", filepath.Join(dir, "charts", "dist.png"), "--unique-chart")

	matches, err := filepath.Glob(filepath.Join(dir, "charts", "dist_*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.NoFileExists(t, filepath.Join(dir, "charts", "dist.png"))
}

func TestCLI_ReportMissingInputFails(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "report", "--input", filepath.Join(dir, "nope.csv"), "--output", filepath.Join(dir, "x.pdf"))
	require.Error(t, err)
	var nf *ingest.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))

	_, err = execute(t, "report", "--dsn", "sqlite://"+filepath.Join(dir, "db.sqlite"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--query is required")
}

func TestCLI_ReportWithModel(t *testing.T) {
	dir := isolate(t)
	reply := "## EXECUTIVE SUMMARY\nCampaign A converts.\n## KEY FINDINGS\n- A beats B\n## STATISTICAL OVERVIEW\nn=2\n## RISK FACTORS IDENTIFIED\nNone\n## CLINICAL RECOMMENDATIONS\nShift spend to A."
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
			"usage":   map[string]int{"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150},
		})
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AIREPORTER_BASE_URL", srv.URL)

	input := writeFile(t, filepath.Join(dir, "campaigns.csv"), campaignsCSV)
	out := runCmd(t, "report", "-i", input, "-o", filepath.Join(dir, "r.pdf"), "--model", "gpt-4o-mini")
	assert.Contains(t, out, "Insights generated.")
	assert.Equal(t, "gpt-4o-mini", gotModel)
	requirePDF(t, filepath.Join(dir, "r.pdf"))
}

func TestCLI_ReportModelFailureDegrades(t *testing.T) {
	dir := isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AIREPORTER_BASE_URL", srv.URL)

	input := writeFile(t, filepath.Join(dir, "campaigns.csv"), campaignsCSV)
	out := runCmd(t, "report", "-i", input, "-o", filepath.Join(dir, "r.pdf"))
	assert.Contains(t, out, "Error generating insights:")
	requirePDF(t, filepath.Join(dir, "r.pdf"))
}

func TestCLI_ReportUnknownProviderNamesCause(t *testing.T) {
	dir := isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	input := writeFile(t, filepath.Join(dir, "campaigns.csv"), campaignsCSV)

	out := runCmd(t, "report", "-i", input, "-o", filepath.Join(dir, "r.pdf"), "--provider", "bedrock")
	assert.Contains(t, out, `Error generating insights: provider bedrock: unknown provider "bedrock"`)
	assert.NotContains(t, out, "No API key configured")
	requirePDF(t, filepath.Join(dir, "r.pdf"))
}

func TestCLI_AnalyzeWritesCSV(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "campaigns.csv"), campaignsCSV)
	dest := filepath.Join(dir, "out", "agg.csv")

	out := runCmd(t, "analyze", input, "-o", dest)
	assert.Contains(t, out, "✓ Wrote 2 rows (adtech)")
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "Campaign_ID,Impressions,Clicks,Spend,Conversions,CTR,CPM,CPA\n"+
		"A,2000,40,20.0,4,2.0,10.0,5.0\n"+
		"B,1000,10,10.0,0,1.0,10.0,0.0\n", string(b))

	out = runCmd(t, "analyze", input)
	assert.Contains(t, out, "Detected shape: adtech (2 rows x 8 columns)")
	assert.Contains(t, out, "| A | 2000 | 40 | 20.00 | 4 | 2.00 | 10.00 | 5.00 |")

	out = runCmd(t, "analyze", input, "--raw")
	assert.Contains(t, out, "(5 rows x 6 columns)")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	dir := isolate(t)
	runCmd(t, "config", "set", "model", "gpt-4.1-mini")
	runCmd(t, "config", "set", "api_key", "sk-1234567890")
	assert.FileExists(t, filepath.Join(dir, ".ai-reporter", "config.yaml"))

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "model: gpt-4.1-mini")
	assert.Contains(t, out, "api_key: sk-****890")
	assert.NotContains(t, out, "sk-1234567890")

	_, err := execute(t, "config", "set", "provider", "nope")
	assert.Error(t, err)
}

func TestCLI_ModelsSyncPersists(t *testing.T) {
	dir := isolate(t)
	catalog := writeFile(t, filepath.Join(dir, "models.json"), `{"local/tiny":{"ContextTokens":4096,"InputPerK":0,"OutputPerK":0}}`)

	runCmd(t, "models", "sync", "--file", catalog, "--merge")
	stored := filepath.Join(dir, ".ai-reporter", "models.json")
	require.FileExists(t, stored)
	b, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"local/tiny"`))
	assert.True(t, strings.Contains(string(b), `"gpt-4o"`))

	// a fresh invocation picks the stored catalog up
	ai.OverrideCatalog(map[string]ai.ModelInfo{"x": {Name: "x"}})
	out := runCmd(t, "models", "show")
	assert.Contains(t, out, `"local/tiny"`)

	runCmd(t, "models", "reset")
	assert.NoFileExists(t, stored)
}
