// pattern: Imperative Shell
package instance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// The data dir holds the single-instance state side by side: the lock
// answers "is an editor running here", the port file says where.
const (
	lockFileName = "loom.lock"
	portFileName = "loom.port"
)

func lockPath(dataDir string) string { return filepath.Join(dataDir, lockFileName) }
func portPath(dataDir string) string { return filepath.Join(dataDir, portFileName) }

// Lock claims the data dir for this process. A second editor pointed
// at the same dir gets an error instead of a lock.
func Lock(dataDir string) (*flock.Flock, error) {
	fl := flock.New(lockPath(dataDir))
	switch locked, err := fl.TryLock(); {
	case err != nil:
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	case !locked:
		return nil, fmt.Errorf("another loom instance is already running")
	}
	return fl, nil
}

// WritePort records the instance server's listener address. Owner-only
// permissions, since the API is unauthenticated.
func WritePort(dataDir, addr string) error {
	return os.WriteFile(portPath(dataDir), []byte(addr), 0600)
}

// Cleanup removes the port file and releases the lock on shutdown.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(portPath(dataDir))
	if fl != nil {
		_ = fl.Unlock()
	}
}
