package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/ai-reporter/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		min  int
	}{
		{"empty", "", 0},
		{"simple", "hello world", 2},
		{"long", strings.Repeat("a", 4000), 900}, // heuristic ~ 1 tok ≈ 4 chars
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got < c.min {
			t.Errorf("%s: got %d < min %d", c.name, got, c.min)
		}
	}
	if got := utils.CountTokens("ab"); got != 1 {
		t.Fatalf("short text: got %d want 1", got)
	}
}

func TestTokenBreakdown(t *testing.T) {
	got := utils.TokenBreakdown(map[string]string{"system": "abcdabcd", "user": ""})
	if got["system"] != 2 || got["user"] != 0 {
		t.Fatalf("unexpected breakdown: %v", got)
	}
}

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.bin")
	if err := utils.EnsureParentDir(p); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	if err := utils.SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := utils.SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "two" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
	if err := utils.EnsureParentDir("bare.pdf"); err != nil {
		t.Fatalf("bare name: %v", err)
	}
}
