package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   func() string
	goarch func() string
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		goos:   func() string { return runtime.GOOS },
		goarch: func() string { return runtime.GOARCH },
	}
}

// Detect performs platform detection and returns platform information.
// It uses runtime.GOOS and runtime.GOARCH for the platform key, and
// gopsutil for Linux distribution details.
//
// Distribution detection is best effort: when gopsutil cannot read it the
// distro fields stay empty. A cancelled context is still a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	goos, goarch := d.goos(), d.goarch()
	key := FromGo(goos, goarch)

	info := &Info{
		Platform: key.Platform,
		Arch:     key.Arch,
		GOOS:     goos,
		GOARCH:   goarch,
	}

	if goos != "linux" {
		return info, nil
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	if distro = normalizePlatform(distro); distro != "" {
		info.Distro = distro
		info.Family = mapFamily(family)
		info.Version = normalizePlatform(version)
	}

	return info, nil
}
