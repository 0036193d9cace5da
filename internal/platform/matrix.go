package platform

import "slices"

// SupportedMatrix maps a platform identifier to the architectures that
// have a published artifact for it.
type SupportedMatrix map[string][]string

// DefaultMatrix lists every platform/architecture pair with a published
// ffmpeg build. It must not be modified.
var DefaultMatrix = SupportedMatrix{
	Darwin:  {X64, ARM64},
	FreeBSD: {X64},
	Linux:   {X64, IA32, ARM64, ARM},
	Win32:   {X64, IA32},
}

// Supported reports whether key has a published artifact.
func (m SupportedMatrix) Supported(key Key) bool {
	archs, ok := m[key.Platform]
	if !ok {
		return false
	}
	return slices.Contains(archs, key.Arch)
}

// Architectures returns a copy of the architectures listed for platform,
// or nil when the platform is unknown.
func (m SupportedMatrix) Architectures(platform string) []string {
	return slices.Clone(m[platform])
}

// Supported reports whether key is listed in DefaultMatrix.
func Supported(key Key) bool {
	return DefaultMatrix.Supported(key)
}
