// pattern: Imperative Shell

package document

import (
	"errors"
	"path/filepath"
)

// OSResolver canonicalizes name against the working directory,
// following symlinks. Unnamed buffers and files that cannot be
// resolved (not yet on disk, broken links) report an error; callers
// treat that as "no canonical form", not as a failure to act on.
func OSResolver(name string) (string, error) {
	if name == "" {
		return "", errors.New("unnamed buffer")
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
