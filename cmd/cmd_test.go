package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsbacot/livesearch/client"
)

// offlineConfig writes a config that searches the demo catalog instantly
func offlineConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "offline = true\noffline_latency = \"0s\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := New()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFind_PrintsBestMatch(t *testing.T) {
	cfg := offlineConfig(t)

	stdout, stderr, err := run(t, "", "find", "react", "--config", cfg)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "# React\n"))
	assert.Contains(t, stdout, "- id: /facebook/react")
	assert.Contains(t, stderr, "Use -i flag to select interactively")
}

func TestFind_RootArgsBehaveLikeFind(t *testing.T) {
	cfg := offlineConfig(t)

	stdout, _, err := run(t, "", "bubble", "tea", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Bubble Tea")
}

func TestFind_NoResults(t *testing.T) {
	cfg := offlineConfig(t)

	_, _, err := run(t, "", "find", "zzz-nothing", "--config", cfg)
	assert.ErrorIs(t, err, ErrNoLibraries)
}

func TestFind_UnknownVersion(t *testing.T) {
	cfg := offlineConfig(t)

	_, _, err := run(t, "", "find", "vue", "--version", "v0.0.1", "--config", cfg)
	assert.ErrorIs(t, err, client.ErrLibraryNotFound)
}

func TestRepl_Session(t *testing.T) {
	cfg := offlineConfig(t)
	input := strings.Join([]string{
		"React",
		"  react ",
		"",
		":history",
		":stats json",
		":cache",
		":bogus",
		":clear",
		":stats",
		":history",
		":quit",
		"never reached",
	}, "\n")

	stdout, _, err := run(t, input, "repl", "--no-prompt", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ 3 results for 'React' (context7.com)")
	assert.Contains(t, stdout, "✓ 3 results for '  react ' (cache)")
	assert.Contains(t, stdout, "(no active search)")
	assert.Contains(t, stdout, " 1. react\n")
	assert.Contains(t, stdout, `"hits": 1`)
	assert.Contains(t, stdout, `"misses": 1`)
	assert.Contains(t, stdout, "Cached Queries")
	assert.Contains(t, stdout, "Unknown command :bogus")
	assert.Contains(t, stdout, "✓ Cleared cache and history")
	assert.Contains(t, stdout, "Cached queries:  0")
	assert.Contains(t, stdout, "No searches yet")
	assert.NotContains(t, stdout, "never reached")
}

func TestRepl_CaseSensitiveFlag(t *testing.T) {
	cfg := offlineConfig(t)

	stdout, _, err := run(t, "Vue\nvue\n:stats\n", "repl", "--no-prompt", "--case-sensitive", "--config", cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(stdout, "(context7.com)"))
	assert.Contains(t, stdout, "Cached queries:  2")
}

func TestRepl_ReportsFailures(t *testing.T) {
	cfg := offlineConfig(t)

	stdout, _, err := run(t, "zzz-nothing\n", "repl", "--no-prompt", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No libraries found for 'zzz-nothing' (context7.com)")
}

func TestConfig_InitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := run(t, "", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Wrote "+path)
	assert.FileExists(t, path)

	// Declining the prompt keeps the file
	stdout, _, err = run(t, "n\n", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cancelled")

	stdout, _, err = run(t, "", "config", "init", "--force", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Wrote")

	stdout, _, err = run(t, "", "config", "show", "--debounce", "50ms", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "debounce_ms = 50")
	assert.Contains(t, stdout, "history_limit = 10")
}

func TestConfig_RejectsInvalidFlags(t *testing.T) {
	cfg := offlineConfig(t)

	_, _, err := run(t, "", "config", "show", "--history-limit", "0", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history_limit must be positive")
}

func TestConfirmAction(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.expected, confirmAction(strings.NewReader(tt.input), &out, "Sure?"), "input %q", tt.input)
		assert.Equal(t, "Sure? (y/N): ", out.String())
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "0.0%", formatRatio(0))
	assert.Equal(t, "50.0%", formatRatio(0.5))
	assert.Equal(t, "33.3%", formatRatio(1.0/3))
}
