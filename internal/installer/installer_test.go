package installer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/artifact"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/config"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/transport"
)

var (
	binaryBytes  = bytes.Repeat([]byte("\x7fELF-ffmpeg"), 256)
	licenseBytes = []byte("GNU GENERAL PUBLIC LICENSE\n")
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// releaseHost serves a release the way the public host lays it out.
type releaseHost struct {
	*httptest.Server
	licenseStatus int
	dropLicense   bool
	requests      atomic.Int32
}

func newReleaseHost(t *testing.T, key platform.Key) *releaseHost {
	t.Helper()
	h := &releaseHost{licenseStatus: http.StatusOK}
	compressed := gzipped(t, binaryBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("/b6.0/"+key.String()+".gz", func(w http.ResponseWriter, r *http.Request) {
		w.Write(compressed)
	})
	mux.HandleFunc("/b6.0/"+key.String()+".LICENSE", func(w http.ResponseWriter, r *http.Request) {
		if h.dropLicense {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		if h.licenseStatus != http.StatusOK {
			w.WriteHeader(h.licenseStatus)
			return
		}
		w.Write(licenseBytes)
	})

	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(h.Close)
	return h
}

func testConfig(dir, baseURL string, key platform.Key) config.Config {
	return config.Config{
		Dir:         dir,
		Platform:    key.Platform,
		Arch:        key.Arch,
		Release:     "b6.0",
		ReleaseName: "6.0",
		BaseURL:     baseURL,
	}
}

func testEngine() *transport.Engine {
	return transport.NewEngine(
		transport.WithRetries(0),
		transport.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
}

type recordingLogger struct {
	infos    []string
	warnings []string
}

func (l *recordingLogger) Debug(string, ...any)      {}
func (l *recordingLogger) Info(msg string, _ ...any) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }
func (l *recordingLogger) Error(string, ...any)      {}

type countingFetcher struct {
	calls []artifact.Descriptor
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, d artifact.Descriptor, progress transport.ProgressFunc) error {
	f.calls = append(f.calls, d)
	return f.err
}

type recordingProgress struct {
	bytes int64
	done  int
}

func (p *recordingProgress) Observe(s transport.Sample) { p.bytes += s.Bytes }
func (p *recordingProgress) Done()                      { p.done++ }

var darwinARM64 = platform.Key{Platform: platform.Darwin, Arch: platform.ARM64}

func TestInstall_EndToEnd(t *testing.T) {
	host := newReleaseHost(t, darwinARM64)
	dir := t.TempDir()
	logger := &recordingLogger{}
	progress := &recordingProgress{}

	inst := New(testConfig(dir, host.URL, darwinARM64),
		WithEngine(testEngine()), WithLogger(logger), WithProgress(progress))

	result, err := inst.Install(context.Background())
	require.NoError(t, err)

	wantPath := filepath.Join(dir, "bin", "ffmpeg")
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []State{
		StateStart,
		StateDownloadingBinary,
		StateSettingPermissions,
		StateDownloadingLicense,
		StateDone,
	}, result.Trace)
	assert.Equal(t, wantPath, result.Path)
	assert.Equal(t, wantPath+".LICENSE", result.LicensePath)
	assert.False(t, result.AlreadyInstalled)
	assert.False(t, result.LicenseSkipped)

	got, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, binaryBytes, got, "binary is stored decompressed")

	info, err := os.Stat(wantPath)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, ExecutableMode, info.Mode().Perm())
	}

	license, err := os.ReadFile(wantPath + ".LICENSE")
	require.NoError(t, err)
	assert.Equal(t, licenseBytes, license)

	assert.Equal(t, 1, progress.done)
	assert.Empty(t, logger.warnings)
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin", "ffmpeg")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o755))

	fetcher := &countingFetcher{}
	logger := &recordingLogger{}
	result, err := New(testConfig(dir, "https://unused.example", darwinARM64),
		WithEngine(fetcher), WithLogger(logger)).Install(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []State{StateStart, StateAlreadyInstalled, StateDone}, result.Trace)
	assert.True(t, result.AlreadyInstalled)
	assert.Empty(t, fetcher.calls, "no network activity")
	assert.Contains(t, logger.infos, "ffmpeg is installed already.")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(got))
}

func TestInstall_DirectoryAtBinaryPathIsNotInstalled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin", "ffmpeg")
	require.NoError(t, os.MkdirAll(path, 0o755))

	host := newReleaseHost(t, darwinARM64)
	result, err := New(testConfig(dir, host.URL, darwinARM64), WithEngine(testEngine())).
		Install(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateFatalExit, result.State)
	assert.Contains(t, result.Trace, StateDownloadingBinary)
	assert.True(t, transport.ErrFilesystem.Has(err), "got %v", err)
}

func TestInstall_UnsupportedPlatform(t *testing.T) {
	tests := []platform.Key{
		{Platform: platform.Win32, Arch: platform.ARM64},
		{Platform: platform.FreeBSD, Arch: platform.ARM64},
		{Platform: "sunos", Arch: platform.X64},
	}

	for _, key := range tests {
		t.Run(key.String(), func(t *testing.T) {
			fetcher := &countingFetcher{}
			result, err := New(testConfig(t.TempDir(), "https://unused.example", key), WithEngine(fetcher)).
				Install(context.Background())

			var unsupported *UnsupportedPlatformError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, key, unsupported.Key)
			assert.Equal(t, StateFatalExit, result.State)
			assert.Empty(t, result.Path)
			assert.Empty(t, fetcher.calls)
		})
	}
}

func TestInstall_WithMatrix(t *testing.T) {
	key := platform.Key{Platform: platform.Win32, Arch: platform.ARM64}
	fetcher := &countingFetcher{}
	dir := t.TempDir()

	matrix := platform.SupportedMatrix{platform.Win32: {platform.ARM64}}
	result, err := New(testConfig(dir, "https://cdn.example/releases", key),
		WithEngine(fetcher), WithMatrix(matrix)).Install(context.Background())

	// The counting fetcher writes nothing, so chmod fails after the download.
	require.Error(t, err)
	assert.True(t, ErrFilesystem.Has(err))
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "https://cdn.example/releases/b6.0/win32-arm64.gz", fetcher.calls[0].URL)
	assert.Equal(t, filepath.Join(dir, "bin", "ffmpeg.exe"), fetcher.calls[0].Dest)
	assert.Equal(t, filepath.Join(dir, "bin", "ffmpeg.exe"), result.Path)
}

func TestInstall_Override(t *testing.T) {
	fetcher := &countingFetcher{}
	cfg := testConfig(t.TempDir(), "https://unused.example", platform.Key{Platform: "sunos", Arch: "sparc"})
	cfg.BinaryPath = "/opt/ffmpeg/bin/ffmpeg"

	inst := New(cfg, WithEngine(fetcher))
	result, err := inst.Install(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []State{StateStart, StateDone}, result.Trace)
	assert.True(t, result.Overridden)
	assert.Equal(t, cfg.BinaryPath, result.Path)
	assert.Empty(t, fetcher.calls)

	path, ok := inst.BinaryPath()
	assert.True(t, ok)
	assert.Equal(t, cfg.BinaryPath, path)
}

func TestInstall_BinaryNotFoundIsFatal(t *testing.T) {
	host := newReleaseHost(t, darwinARM64)
	key := platform.Key{Platform: platform.Linux, Arch: platform.ARM}

	result, err := New(testConfig(t.TempDir(), host.URL, key), WithEngine(testEngine())).
		Install(context.Background())
	require.Error(t, err)

	assert.True(t, transport.IsNotFound(err))
	assert.Equal(t, StateFatalExit, result.State)
	assert.Equal(t, []State{StateStart, StateDownloadingBinary, StateFatalExit}, result.Trace)
}

func TestInstall_LicenseNotFoundIsWarning(t *testing.T) {
	host := newReleaseHost(t, darwinARM64)
	host.licenseStatus = http.StatusNotFound
	logger := &recordingLogger{}
	dir := t.TempDir()

	result, err := New(testConfig(dir, host.URL, darwinARM64),
		WithEngine(testEngine()), WithLogger(logger)).Install(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.True(t, result.LicenseSkipped)
	assert.Empty(t, result.LicensePath)
	assert.Equal(t, []string{"Failed to download the ffmpeg LICENSE."}, logger.warnings)

	_, statErr := os.Stat(filepath.Join(dir, "bin", "ffmpeg"))
	assert.NoError(t, statErr, "binary stays installed")
}

func TestInstall_LicenseServerErrorIsFatal(t *testing.T) {
	host := newReleaseHost(t, darwinARM64)
	host.licenseStatus = http.StatusInternalServerError

	result, err := New(testConfig(t.TempDir(), host.URL, darwinARM64), WithEngine(testEngine())).
		Install(context.Background())
	require.Error(t, err)

	assert.Equal(t, http.StatusInternalServerError, transport.StatusCode(err))
	assert.Equal(t, StateFatalExit, result.State)
	assert.Equal(t, []State{
		StateStart,
		StateDownloadingBinary,
		StateSettingPermissions,
		StateDownloadingLicense,
		StateFatalExit,
	}, result.Trace)
}

func TestInstall_LicenseConnectionDropIsFatal(t *testing.T) {
	host := newReleaseHost(t, darwinARM64)
	host.dropLicense = true
	dir := t.TempDir()

	result, err := New(testConfig(dir, host.URL, darwinARM64), WithEngine(testEngine())).
		Install(context.Background())
	require.Error(t, err)

	assert.True(t, transport.IsTransient(err))
	assert.False(t, transport.IsNotFound(err))
	assert.Equal(t, StateFatalExit, result.State)
	assert.False(t, result.LicenseSkipped)
	assert.Empty(t, result.LicensePath)
	assert.Equal(t, []State{
		StateStart,
		StateDownloadingBinary,
		StateSettingPermissions,
		StateDownloadingLicense,
		StateFatalExit,
	}, result.Trace)
	assert.FileExists(t, filepath.Join(dir, "bin", "ffmpeg"))
}

func TestInstall_FetchErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &countingFetcher{err: boom}
	progress := &recordingProgress{}

	_, err := New(testConfig(t.TempDir(), "https://cdn.example", darwinARM64),
		WithEngine(fetcher), WithProgress(progress)).Install(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "download ffmpeg binary")
	assert.Equal(t, 1, progress.done, "progress is finished even on failure")
}

func TestInstall_StatErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	// bin is a file, so stat of bin/ffmpeg fails with ENOTDIR.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin"), nil, 0o644))

	fetcher := &countingFetcher{}
	result, err := New(testConfig(dir, "https://cdn.example", darwinARM64), WithEngine(fetcher)).
		Install(context.Background())
	require.Error(t, err)

	assert.True(t, ErrFilesystem.Has(err), "got %v", err)
	assert.Equal(t, StateFatalExit, result.State)
	assert.Empty(t, fetcher.calls)
}

func TestInstall_Idempotent(t *testing.T) {
	host := newReleaseHost(t, darwinARM64)
	dir := t.TempDir()
	cfg := testConfig(dir, host.URL, darwinARM64)

	_, err := New(cfg, WithEngine(testEngine())).Install(context.Background())
	require.NoError(t, err)
	first := host.requests.Load()

	result, err := New(cfg, WithEngine(testEngine())).Install(context.Background())
	require.NoError(t, err)
	assert.True(t, result.AlreadyInstalled)
	assert.Equal(t, first, host.requests.Load(), "second run makes no requests")
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStart, "start"},
		{StateAlreadyInstalled, "already-installed"},
		{StateDownloadingBinary, "downloading-binary"},
		{StateSettingPermissions, "setting-permissions"},
		{StateDownloadingLicense, "downloading-license"},
		{StateDone, "done"},
		{StateFatalExit, "fatal-exit"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}

	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFatalExit.Terminal())
	assert.False(t, StateDownloadingLicense.Terminal())
}
