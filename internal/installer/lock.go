package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// StaleLockThreshold is the age after which an install lock left behind by
// a crashed process is taken over.
const StaleLockThreshold = 10 * time.Minute

// ErrInstallInProgress is returned when another process holds the install
// lock for the same binary.
var ErrInstallInProgress = errors.New("another ffmpeg install is in progress")

// installLock serializes installs targeting the same binary path.
type installLock struct {
	path string
	file *os.File
}

// lockPath returns the lock file guarding binPath.
func lockPath(binPath string) string {
	return filepath.Join(filepath.Dir(binPath), "."+filepath.Base(binPath)+".lock")
}

// acquireLock creates the lock for binPath with O_CREATE|O_EXCL, creating
// the parent directory as needed.
func acquireLock(binPath string) (*installLock, error) {
	if err := os.MkdirAll(filepath.Dir(binPath), 0o755); err != nil {
		return nil, ErrFilesystem.Wrap(fmt.Errorf("create binary dir: %w", err))
	}

	path := lockPath(binPath)

	file, err := createLockFile(path)
	if err != nil {
		return nil, err
	}

	data := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(data); err != nil {
		file.Close()
		os.Remove(path)
		return nil, ErrFilesystem.Wrap(fmt.Errorf("write lock file: %w", err))
	}

	return &installLock{path: path, file: file}, nil
}

// createLockFile creates path exclusively. An existing lock is taken over
// when stale, and the create is retried when the holder removed it in the
// meantime.
func createLockFile(path string) (*os.File, error) {
	const attempts = 3
	for range attempts {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, ErrFilesystem.Wrap(fmt.Errorf("create lock file: %w", err))
		}

		stale, err := isLockStale(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, ErrFilesystem.Wrap(fmt.Errorf("stat lock file: %w", err))
		case !stale:
			return nil, ErrInstallInProgress
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFilesystem.Wrap(fmt.Errorf("remove stale lock: %w", err))
		}
	}
	return nil, ErrInstallInProgress
}

// release removes the lock. It is safe to call more than once.
func (l *installLock) release() error {
	if l == nil {
		return nil
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path != "" {
		path := l.path
		l.path = ""
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}
	return nil
}

// statLock is replaced in tests to interleave with another lock holder.
var statLock = os.Stat

func isLockStale(path string) (bool, error) {
	info, err := statLock(path)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
