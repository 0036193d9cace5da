package installer

import (
	"fmt"

	"github.com/zeebo/errs"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
)

var (
	// ErrFilesystem classifies local failures such as stat or chmod.
	ErrFilesystem = errs.Class("filesystem error")
	// ErrCheck classifies a failed smoke check.
	ErrCheck = errs.Class("check failed")
)

// UnsupportedPlatformError reports a platform/architecture pair without a
// published binary.
type UnsupportedPlatformError struct {
	Key platform.Key
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("install failed: no ffmpeg binary found for %s", e.Key)
}
