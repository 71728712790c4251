package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheClearFileBackend(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfg := writeTestConfig(t, dir, `
[cache]
backend = "file"
dir = "`+filepath.ToSlash(cacheDir)+`"
`)
	in := writeScenario(t, dir)

	if err := execute(t, "--config", cfg, "layout", in, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("layout: %v", err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("layout did not write a cache entry")
	}

	if err := execute(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ = os.ReadDir(cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestCacheClearDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, `
[cache]
backend = "none"
`)
	if err := execute(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Errorf("cache clear with caching disabled: %v", err)
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir, `
[cache]
backend = "file"
dir = "`+filepath.ToSlash(filepath.Join(dir, "c"))+`"
`)
	cli := New(os.Stderr, LogInfo)
	root := cli.RootCommand()
	root.SetArgs([]string{"--config", cfg, "cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cli.cfg.Cache.Dir != filepath.ToSlash(filepath.Join(dir, "c")) {
		t.Errorf("cache dir = %q", cli.cfg.Cache.Dir)
	}
}
