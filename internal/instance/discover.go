// pattern: Imperative Shell
package instance

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

// Discover locates the running editor and returns its base URL, e.g.
// "http://127.0.0.1:12345". The lock decides whether an instance exists
// at all; the port file and a health probe decide whether it is
// reachable.
func Discover(dataDir string) (string, error) {
	running, err := lockHeld(dataDir)
	if err != nil {
		return "", err
	}
	if !running {
		return "", fmt.Errorf("no running loom instance found (start loom first)")
	}

	addr, err := readPortAddr(dataDir)
	if err != nil {
		return "", err
	}

	baseURL := "http://" + addr
	if err := probeHealth(baseURL); err != nil {
		return "", err
	}
	return baseURL, nil
}

// lockHeld reports whether another process holds the data dir lock.
// Acquiring it ourselves proves nobody does; release it right away.
func lockHeld(dataDir string) (bool, error) {
	fl := flock.New(lockPath(dataDir))
	locked, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return false, nil
	}
	return true, nil
}

// readPortAddr reads the listener address the editor wrote on startup.
// A held lock with a bad port file means a crashed or half-started
// instance, so these errors point at `loom cleanup`.
func readPortAddr(dataDir string) (string, error) {
	data, err := os.ReadFile(portPath(dataDir))
	if err != nil {
		return "", fmt.Errorf("loom instance detected but port file missing (try 'loom cleanup'): %w", err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("loom port file is empty (try 'loom cleanup')")
	}
	return addr, nil
}

// probeHealth confirms the instance answers on its advertised address.
func probeHealth(baseURL string) error {
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return fmt.Errorf("loom instance not responding (try 'loom cleanup'): %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loom health check failed (status %d)", resp.StatusCode)
	}
	return nil
}
