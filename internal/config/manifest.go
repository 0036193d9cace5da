package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
)

// DefaultParseTimeout applies when the caller's context has no deadline.
const DefaultParseTimeout = 5 * time.Second

// Manifest is the packaging metadata read from ffstatic.lua. Empty fields
// were not set by the manifest.
type Manifest struct {
	ReleaseTag  string
	ReleaseName string
	BinaryURL   string
}

// ParseError represents a manifest parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}

// LoadManifest reads and evaluates the manifest at path. A missing file is
// not an error and yields an empty Manifest.
func LoadManifest(ctx context.Context, path string, info *platform.Info) (Manifest, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxManifestSize+1))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	if len(data) > MaxManifestSize {
		return Manifest{}, &ParseError{
			Message: "manifest too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxManifestSize),
		}
	}

	return ParseManifest(ctx, string(data), info)
}

// ParseManifest evaluates luaCode in a sandboxed VM and extracts the
// global "ffstatic" table. When info is non-nil, a read-only "platform"
// table describing it is available to the code.
func ParseManifest(ctx context.Context, luaCode string, info *platform.Info) (Manifest, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if info != nil {
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return Manifest{}, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Manifest{}, fmt.Errorf("evaluate manifest: %w", ctxErr)
		}
		return Manifest{}, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractManifest(L)
}

// extractManifest reads the global "ffstatic" table from a Lua state.
func extractManifest(L *lua.LState) (Manifest, error) {
	global := L.GetGlobal(luaGlobalManifest)
	if global.Type() != lua.LTTable {
		return Manifest{}, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalManifest),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)

	var m Manifest
	fields := []struct {
		name string
		dest *string
	}{
		{luaFieldTag, &m.ReleaseTag},
		{luaFieldName, &m.ReleaseName},
		{luaFieldURL, &m.BinaryURL},
	}
	for _, f := range fields {
		value := table.RawGetString(f.name)
		switch value.Type() {
		case lua.LTNil:
			// Unset, or a platform conditional that evaluated to nil.
		case lua.LTString:
			*f.dest = strings.TrimSpace(value.String())
		default:
			return Manifest{}, &ParseError{
				Message: fmt.Sprintf("invalid field '%s.%s'", luaGlobalManifest, f.name),
				Detail:  fmt.Sprintf("expected string, got %s", value.Type()),
			}
		}
	}

	return m, nil
}
