package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace writes a vocabulary and a config into a temp dir and returns the
// flags that point a command at them.
func workspace(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	dict := filepath.Join(dir, "dictionary.txt")
	require.NoError(t, os.WriteFile(dict, []byte("hell\nhello\nhelp\nhella\nworld\n"), 0644))
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[check]\ntolerance = 1\n"), 0644))

	return dir, []string{
		"--config", cfg,
		"--dict", dict,
		"--tree", filepath.Join(dir, "bk_tree.bin"),
		"--filter", filepath.Join(dir, "bloom_filter.bin"),
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir, flags := workspace(t)
	out, err := execute(t, "", append([]string{"build"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Built 5 words")
	assert.FileExists(t, filepath.Join(dir, "bk_tree.bin"))
	assert.FileExists(t, filepath.Join(dir, "bloom_filter.bin"))
}

func TestCheckCommandAuto(t *testing.T) {
	_, flags := workspace(t)
	out, err := execute(t, "Helo,  wrold!\n", append([]string{"check", "--auto"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "Hell, world!\n", out)
}

func TestCheckCommandListFromFile(t *testing.T) {
	dir, flags := workspace(t)
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("helo world\nwrold"), 0644))

	out, err := execute(t, "", append([]string{"check", "--list", "-f", text}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "helo -> hell, hello, help")
	assert.Contains(t, out, "wrold -> world")
}

func TestCheckCommandMenuFromFile(t *testing.T) {
	dir, flags := workspace(t)
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("Helo world"), 0644))

	out, err := execute(t, "2\n", append([]string{"check", "-f", text}, flags...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Hello world\n"), out)
}

func TestCheckCommandMissingFile(t *testing.T) {
	_, flags := workspace(t)
	_, err := execute(t, "", append([]string{"check", "-f", "/does/not/exist.txt"}, flags...)...)
	assert.ErrorContains(t, err, "failed to read")
}

func TestCheckCommandToleranceFlag(t *testing.T) {
	_, flags := workspace(t)
	out, err := execute(t, "hallx\n", append([]string{"check", "--list", "-t", "2"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "hella")
}

func TestInfoCommand(t *testing.T) {
	dir, flags := workspace(t)
	_, err := execute(t, "", append([]string{"build"}, flags...)...)
	require.NoError(t, err)

	out, err := execute(t, "", "info", filepath.Join(dir, "bk_tree.bin"))
	require.NoError(t, err)
	assert.Contains(t, out, "BK-Tree Index")
	assert.Contains(t, out, "5 of 5 slots")

	out, err = execute(t, "", "info", filepath.Join(dir, "bloom_filter.bin"))
	require.NoError(t, err)
	assert.Contains(t, out, "Bloom Filter Index")

	out, err = execute(t, "", "info", filepath.Join(dir, "dictionary.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "words:           5")
}

func TestSharedIndexPathRejected(t *testing.T) {
	dir, flags := workspace(t)
	shared := filepath.Join(dir, "index.bin")
	flags = append(flags, "--tree", shared, "--filter", shared)

	_, err := execute(t, "", append([]string{"build"}, flags...)...)
	assert.ErrorContains(t, err, "both point to")
	assert.NoFileExists(t, shared)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
	assert.Contains(t, out, "Config dir")
}

func TestInfoVocabularyLookups(t *testing.T) {
	dir, _ := workspace(t)
	dict := filepath.Join(dir, "dictionary.txt")

	out, err := execute(t, "", "info", dict, "--has", "hello", "--has", "helo", "--prefix", "hel", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "extensions:      .txt, .lst, .dic, (none)")
	assert.Contains(t, out, `has "hello": true`)
	assert.Contains(t, out, `has "helo": false`)
	assert.Contains(t, out, `prefix "hel": hell, hello`)
}

func TestInfoLookupsNeedVocabulary(t *testing.T) {
	dir, flags := workspace(t)
	_, err := execute(t, "", append([]string{"build"}, flags...)...)
	require.NoError(t, err)

	_, err = execute(t, "", "info", filepath.Join(dir, "bk_tree.bin"), "--has", "hello")
	assert.ErrorContains(t, err, "need a vocabulary file")
}
