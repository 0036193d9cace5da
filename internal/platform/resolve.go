package platform

import (
	"path/filepath"
)

const (
	// BinaryBaseName is the name of the installed executable without suffix.
	BinaryBaseName = "ffmpeg"
	// BinDir is the directory, relative to the package root, holding the binary.
	BinDir = "bin"
)

// BinaryName returns the executable file name for platform.
// Only the win32 platform carries the ".exe" suffix.
func BinaryName(platform string) string {
	if platform == Win32 {
		return BinaryBaseName + ".exe"
	}
	return BinaryBaseName
}

// Resolver maps a platform key to the local install path of the binary.
type Resolver struct {
	dir    string
	matrix SupportedMatrix
}

// NewResolver creates a resolver rooted at the package directory dir,
// checking keys against DefaultMatrix.
func NewResolver(dir string) *Resolver {
	return NewResolverWithMatrix(dir, DefaultMatrix)
}

// NewResolverWithMatrix creates a resolver using a custom support matrix.
func NewResolverWithMatrix(dir string, matrix SupportedMatrix) *Resolver {
	return &Resolver{dir: dir, matrix: matrix}
}

// Resolve returns the absolute path the binary for key is installed at.
// It returns ("", false) when key has no published artifact.
func (r *Resolver) Resolve(key Key) (string, bool) {
	if !r.matrix.Supported(key) {
		return "", false
	}

	dir, err := filepath.Abs(r.dir)
	if err != nil {
		return "", false
	}

	return filepath.Join(dir, BinDir, BinaryName(key.Platform)), true
}
