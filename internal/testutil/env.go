// Package testutil provides utilities for testing ffstatic in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// installEnv lists every variable that changes where or what ffstatic
// installs.
var installEnv = []string{
	"FFMPEG_BIN",
	"npm_config_platform",
	"npm_config_arch",
	"FFSTATIC_PLATFORM",
	"FFSTATIC_ARCH",
	"FFMPEG_BINARY_RELEASE",
	"FFMPEG_BINARY_RELEASE_NAME",
	"FFMPEG_BINARY_CDNURL",
	"FFSTATIC_DIR",
	"FFSTATIC_DEBUG",
}

// SetupTestEnv isolates a test from the host's install configuration and
// returns a fresh package directory, exported as FFSTATIC_DIR.
// This ensures tests never interfere with:
// - A real ffmpeg installation next to the test binary
// - Mirror or release overrides set in the developer's shell
//
// The cleanup function is automatically handled by t.TempDir() and
// t.Setenv(), so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	for _, name := range installEnv {
		// t.Setenv restores the previous value after the test.
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	dir := filepath.Join(t.TempDir(), "pkg")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create package directory %s: %v", dir, err)
	}
	t.Setenv("FFSTATIC_DIR", dir)

	return dir
}

// WriteManifest writes an ffstatic.lua manifest into dir.
func WriteManifest(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "ffstatic.lua")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest %s: %v", path, err)
	}
	return path
}
