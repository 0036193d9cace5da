// Package platform resolves which prebuilt ffmpeg artifact fits the host.
//
// Platform and architecture identifiers use the vocabulary of the release
// host ("linux", "darwin", "win32", "freebsd"; "x64", "ia32", "arm64",
// "arm") rather than Go's GOOS/GOARCH names. The detector maps the running
// process into that vocabulary, and uses gopsutil for Linux distribution
// details that are reported in diagnostics and exposed to the package
// manifest through a read-only Lua table.
package platform

import "context"

// Platform identifiers used by the release host.
const (
	Darwin  = "darwin"
	FreeBSD = "freebsd"
	Linux   = "linux"
	Win32   = "win32"
)

// Architecture identifiers used by the release host.
const (
	X64   = "x64"
	IA32  = "ia32"
	ARM64 = "arm64"
	ARM   = "arm"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Key identifies a platform/architecture pair. Both parts are opaque
// strings; a Key is only meaningful in relation to a SupportedMatrix.
type Key struct {
	Platform string
	Arch     string
}

// String returns the "platform-arch" form used in artifact names.
func (k Key) String() string {
	return k.Platform + "-" + k.Arch
}

// Info contains platform detection information.
type Info struct {
	Platform string // release platform id, e.g. "linux", "win32"
	Arch     string // release arch id, e.g. "x64", "arm64"
	GOOS     string // runtime.GOOS
	GOARCH   string // runtime.GOARCH
	Distro   string // distro ID (Linux only, e.g. "ubuntu")
	Family   string // canonical family (Linux only, e.g. "debian")
	Version  string // distro version (Linux only, e.g. "22.04")
}

// Key returns the platform/architecture pair of the detected host.
func (i *Info) Key() Key {
	return Key{Platform: i.Platform, Arch: i.Arch}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.Platform == Linux
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.Platform == Darwin
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.Platform == Win32
}

// IsFreeBSD returns true if the platform is FreeBSD.
func (i *Info) IsFreeBSD() bool {
	return i.Platform == FreeBSD
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
