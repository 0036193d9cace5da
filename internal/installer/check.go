package installer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Check verifies that path holds a usable binary: the path is absolute,
// names a regular file with execute permission, and `path --help` exits 0.
func Check(ctx context.Context, path string) error {
	if path == "" {
		return ErrCheck.New("no binary path")
	}
	if !filepath.IsAbs(path) {
		return ErrCheck.New("binary path %q is not absolute", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return ErrCheck.Wrap(fmt.Errorf("stat binary: %w", err))
	}
	if !info.Mode().IsRegular() {
		return ErrCheck.New("%s is not a regular file", path)
	}
	// Windows has no execute bits; the --help run below covers it.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return ErrCheck.New("%s is not executable", path)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--help")
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return ErrCheck.Wrap(fmt.Errorf("%s --help: %w", path, err))
	}

	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
