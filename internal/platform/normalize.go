package platform

import "strings"

// goosNames maps GOOS values whose release name differs from Go's.
var goosNames = map[string]string{
	"windows": Win32,
}

// goarchNames maps GOARCH values whose release name differs from Go's.
var goarchNames = map[string]string{
	"amd64": X64,
	"386":   IA32,
}

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// FromGo converts GOOS/GOARCH values into release identifiers.
// Values without a known mapping pass through unchanged, so an exotic
// host simply produces a Key that the matrix does not support.
func FromGo(goos, goarch string) Key {
	key := Key{Platform: goos, Arch: goarch}
	if name, ok := goosNames[goos]; ok {
		key.Platform = name
	}
	if name, ok := goarchNames[goarch]; ok {
		key.Arch = name
	}
	return key
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
