package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"tidyup/internal/services"
)

// Lock is a held run lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// FallbackDir is the lock directory used when the configured state
// directory is unusable.
func FallbackDir() string {
	return filepath.Join(os.TempDir(), "tidyup-locks")
}

// PathFor returns the lock file used for source inside lockDir.
func PathFor(lockDir, source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolve source: %w", err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock"), nil
}

// Acquire takes the lock for source without blocking. It returns an error
// wrapping services.ErrLocked when another process holds it.
func Acquire(lockDir, source string) (*Lock, error) {
	path, err := PathFor(lockDir, source)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "lock", "resolve lock path", source, err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "lock", "create lock directory", lockDir, err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "lock", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "lock", "acquire lock",
			fmt.Sprintf("another tidyup run is organizing %s", source), nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the lock. It is safe to call on a nil lock and more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
