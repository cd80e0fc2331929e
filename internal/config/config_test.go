package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs and
// clears credential variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("AIREPORTER_API_KEY", "")
	{
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(t.TempDir()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider)
	assert.Equal(t, "gpt-4o", c.Model)
	assert.Equal(t, 1500, c.MaxTokens)
	assert.InDelta(t, 0.7, c.Temperature, 1e-9)
	assert.Equal(t, 60, c.HTTPTimeoutSec)
	assert.Equal(t, "data/Heart.csv", c.InputPath)
	assert.Equal(t, "Heart_Disease_Analysis_Report.pdf", c.OutputPath)
	assert.Equal(t, "diagnosis_distribution.png", c.ChartPath)
	assert.False(t, c.UniqueChart)
	assert.Empty(t, c.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("AIREPORTER_MODEL", "gpt-4o-mini")
	t.Setenv("AIREPORTER_MAX_TOKENS", "900")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", c.APIKey)
	assert.Equal(t, "gpt-4o-mini", c.Model)
	assert.Equal(t, 900, c.MaxTokens)

	t.Setenv("AIREPORTER_API_KEY", "sk-prefixed")
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", c.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	t.Setenv("AIREPORTER_PROVIDER", "")
	os.Unsetenv("AIREPORTER_PROVIDER")
	require.NoError(t, os.WriteFile(".env", []byte("AIREPORTER_PROVIDER=openrouter\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("AIREPORTER_PROVIDER") })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", c.Provider)
}

func TestSaveAndReload(t *testing.T) {
	home := isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("model", "anthropic/claude-3.5-sonnet"))
	require.NoError(t, c.Set("provider", "OpenRouter"))
	require.NoError(t, c.Set("unique_chart", "true"))
	require.NoError(t, Save(c, ""))

	assert.FileExists(t, filepath.Join(home, ".ai-reporter", "config.yaml"))
	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", again.Model)
	assert.Equal(t, "openrouter", again.Provider)
	assert.True(t, again.UniqueChart)
}

func TestExplicitConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_title: Quarterly Ads\nmax_tokens: 400\n"), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Ads", c.ReportTitle)
	assert.Equal(t, 400, c.MaxTokens)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_tokens: [\n"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestSetValidation(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("provider", "bedrock"))
	assert.Error(t, c.Set("max_tokens", "-1"))
	assert.Error(t, c.Set("temperature", "hot"))
	assert.Error(t, c.Set("unique_chart", "maybe"))
	assert.Error(t, c.Set("nope", "x"))
	require.NoError(t, c.Set("provider", "local"))
	assert.Equal(t, "ollama", c.Provider)
	for _, k := range Keys() {
		assert.Contains(t, defaults, k)
	}
}
