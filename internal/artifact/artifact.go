// Package artifact builds the remote locations of release artifacts.
//
// Everything here is pure string composition: no network or filesystem
// access happens, so the URLs for a release can be computed and tested
// without I/O.
package artifact

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
)

const (
	// BinarySuffix is appended to "{platform}-{arch}" for the binary artifact.
	BinarySuffix = ".gz"
	// LicenseSuffix is appended to "{platform}-{arch}" and to the local
	// binary path for the license artifact.
	LicenseSuffix = ".LICENSE"
	// GzipExt is the file extension that marks a gzip-compressed payload.
	GzipExt = ".gz"
)

// Release identifies a published artifact set.
type Release struct {
	Tag     string // opaque release identifier, e.g. "b6.0"
	Name    string // human-readable release name, used for display only
	BaseURL string // release host or mirror, e.g. "https://cdn.example/releases"
}

// Location holds the remote URLs of the artifacts for one platform key.
type Location struct {
	Release    Release
	Key        platform.Key
	BinaryURL  string
	LicenseURL string
}

// Descriptor describes a single transfer: where to fetch from, where to
// write to, and whether the payload must be gunzipped on the way.
type Descriptor struct {
	URL        string
	Dest       string
	Compressed bool
}

// Locate builds the artifact URLs for key in release:
//
//	{baseURL}/{tag}/{platform}-{arch}.gz
//	{baseURL}/{tag}/{platform}-{arch}.LICENSE
//
// A trailing slash on the base URL is ignored.
func Locate(release Release, key platform.Key) (Location, error) {
	if release.Tag == "" {
		return Location{}, fmt.Errorf("release tag is required")
	}
	base := strings.TrimRight(release.BaseURL, "/")
	if base == "" {
		return Location{}, fmt.Errorf("base URL is required")
	}
	if key.Platform == "" || key.Arch == "" {
		return Location{}, fmt.Errorf("platform and architecture are required, got %q", key.String())
	}

	prefix := fmt.Sprintf("%s/%s/%s", base, release.Tag, key.String())

	return Location{
		Release:    release,
		Key:        key,
		BinaryURL:  prefix + BinarySuffix,
		LicenseURL: prefix + LicenseSuffix,
	}, nil
}

// Binary returns the transfer descriptor for the binary written to dest.
func (l Location) Binary(dest string) Descriptor {
	return NewDescriptor(l.BinaryURL, dest)
}

// License returns the transfer descriptor for the license file that
// accompanies the binary installed at binaryPath.
func (l Location) License(binaryPath string) Descriptor {
	return NewDescriptor(l.LicenseURL, LicensePath(binaryPath))
}

// LicensePath returns the local path of the license for binaryPath.
func LicensePath(binaryPath string) string {
	return binaryPath + LicenseSuffix
}

// NewDescriptor creates a descriptor whose Compressed flag is derived
// from the URL alone.
func NewDescriptor(rawURL, dest string) Descriptor {
	return Descriptor{
		URL:        rawURL,
		Dest:       dest,
		Compressed: IsGzipURL(rawURL),
	}
}

// IsGzipURL reports whether the last path segment of rawURL has the ".gz"
// extension. Query string and fragment are ignored; response headers and
// content never take part in the decision.
func IsGzipURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	filename := path.Base(u.Path)
	if filename == "" || filename == "/" || filename == "." {
		return false
	}
	return path.Ext(filename) == GzipExt
}
