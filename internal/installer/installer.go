package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/artifact"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/config"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/transport"
)

// ExecutableMode is applied to the binary after download.
const ExecutableMode fs.FileMode = 0o755

// Fetcher performs a single transfer. *transport.Engine implements it.
type Fetcher interface {
	Fetch(ctx context.Context, d artifact.Descriptor, progress transport.ProgressFunc) error
}

// Progress receives samples of the binary transfer.
// *progress.Indicator implements it.
type Progress interface {
	Observe(transport.Sample)
	Done()
}

// Logger provides structured logging for installation.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Result describes a finished installation.
type Result struct {
	State            State   // StateDone or StateFatalExit
	Trace            []State // every state entered, in order
	Path             string  // binary path, empty when unsupported
	LicensePath      string  // empty unless the license was written
	AlreadyInstalled bool
	Overridden       bool // Path came from an explicit override
	LicenseSkipped   bool // the release has no license artifact
}

// Installer provisions the binary described by a Config.
type Installer struct {
	cfg      config.Config
	resolver *platform.Resolver
	fetcher  Fetcher
	progress Progress
	logger   Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithEngine sets the transfer implementation.
func WithEngine(f Fetcher) Option {
	return func(i *Installer) {
		if f != nil {
			i.fetcher = f
		}
	}
}

// WithProgress reports binary transfer progress to p.
func WithProgress(p Progress) Option {
	return func(i *Installer) {
		i.progress = p
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithMatrix replaces the supported platform matrix.
func WithMatrix(m platform.SupportedMatrix) Option {
	return func(i *Installer) {
		i.resolver = platform.NewResolverWithMatrix(i.cfg.Dir, m)
	}
}

// New creates an installer for cfg. Without WithEngine it uses a
// transport engine with the default policy.
func New(cfg config.Config, opts ...Option) *Installer {
	i := &Installer{
		cfg:      cfg,
		resolver: platform.NewResolver(cfg.Dir),
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.fetcher == nil {
		i.fetcher = transport.NewEngine(transport.WithLogger(i.logger))
	}
	return i
}

// BinaryPath returns where the binary is, or would be, installed. It
// honors the explicit override and reports false for unsupported targets.
func (i *Installer) BinaryPath() (string, bool) {
	if i.cfg.Overridden() {
		return i.cfg.BinaryPath, true
	}
	return i.resolver.Resolve(i.cfg.Key())
}

// run carries the state shared between steps of one Install call.
type run struct {
	result   Result
	location artifact.Location
	lock     *installLock
}

// Install runs the state machine to a terminal state. The returned Result
// is never nil; the error is non-nil exactly when the machine ended in
// StateFatalExit.
func (i *Installer) Install(ctx context.Context) (*Result, error) {
	r := &run{}
	defer func() {
		if err := r.lock.release(); err != nil {
			i.logger.Warn("release install lock", "error", err)
		}
	}()
	state := StateStart

	for {
		r.result.Trace = append(r.result.Trace, state)
		if state.Terminal() {
			break
		}

		i.logger.Debug("install step", "state", state.String())

		next, err := i.step(ctx, state, r)
		if err != nil {
			r.result.Trace = append(r.result.Trace, StateFatalExit)
			r.result.State = StateFatalExit
			i.logger.Debug("install failed", "state", state.String(), "error", err)
			return &r.result, err
		}
		state = next
	}

	r.result.State = state
	return &r.result, nil
}

func (i *Installer) step(ctx context.Context, state State, r *run) (State, error) {
	switch state {
	case StateStart:
		return i.start(r)
	case StateAlreadyInstalled:
		i.logger.Info("ffmpeg is installed already.", "path", r.result.Path)
		return StateDone, nil
	case StateDownloadingBinary:
		return i.downloadBinary(ctx, r)
	case StateSettingPermissions:
		return i.setPermissions(r)
	case StateDownloadingLicense:
		return i.downloadLicense(ctx, r)
	default:
		return StateFatalExit, fmt.Errorf("unexpected install state %s", state)
	}
}

func (i *Installer) start(r *run) (State, error) {
	if i.cfg.Overridden() {
		r.result.Path = i.cfg.BinaryPath
		r.result.Overridden = true
		i.logger.Debug("using explicit binary path", "path", i.cfg.BinaryPath)
		return StateDone, nil
	}

	key := i.cfg.Key()
	path, ok := i.resolver.Resolve(key)
	if !ok {
		return StateFatalExit, &UnsupportedPlatformError{Key: key}
	}
	r.result.Path = path

	installed, err := isInstalled(path)
	if err != nil {
		return StateFatalExit, err
	}
	if !installed {
		lock, err := acquireLock(path)
		if err != nil {
			return StateFatalExit, err
		}
		r.lock = lock
		// Another process may have finished the install before we took the lock.
		if installed, err = isInstalled(path); err != nil {
			return StateFatalExit, err
		}
	}
	if installed {
		r.result.AlreadyInstalled = true
		return StateAlreadyInstalled, nil
	}

	location, err := artifact.Locate(i.cfg.ArtifactRelease(), key)
	if err != nil {
		return StateFatalExit, fmt.Errorf("locate artifacts: %w", err)
	}
	r.location = location

	return StateDownloadingBinary, nil
}

// isInstalled reports whether a regular file exists at path.
func isInstalled(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, ErrFilesystem.Wrap(fmt.Errorf("stat %s: %w", path, err))
	}
}

func (i *Installer) downloadBinary(ctx context.Context, r *run) (State, error) {
	d := r.location.Binary(r.result.Path)
	i.logger.Info("downloading ffmpeg", "release", i.cfg.ReleaseName, "url", d.URL)

	var observe transport.ProgressFunc
	if i.progress != nil {
		observe = i.progress.Observe
	}

	err := i.fetcher.Fetch(ctx, d, observe)
	if i.progress != nil {
		i.progress.Done()
	}
	if err != nil {
		return StateFatalExit, fmt.Errorf("download ffmpeg binary: %w", err)
	}

	return StateSettingPermissions, nil
}

func (i *Installer) setPermissions(r *run) (State, error) {
	if err := os.Chmod(r.result.Path, ExecutableMode); err != nil {
		return StateFatalExit, ErrFilesystem.Wrap(fmt.Errorf("set executable: %w", err))
	}
	return StateDownloadingLicense, nil
}

func (i *Installer) downloadLicense(ctx context.Context, r *run) (State, error) {
	d := r.location.License(r.result.Path)

	err := i.fetcher.Fetch(ctx, d, nil)
	switch {
	case err == nil:
		r.result.LicensePath = d.Dest
	case transport.IsNotFound(err):
		r.result.LicenseSkipped = true
		i.logger.Warn("Failed to download the ffmpeg LICENSE.", "url", d.URL)
	default:
		return StateFatalExit, fmt.Errorf("download ffmpeg license: %w", err)
	}

	return StateDone, nil
}
