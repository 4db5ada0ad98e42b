// Package docker builds and runs one benchmark image per runtime version and
// aggregates what the containers write to the shared results directory.
package docker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrLayout reports a container root that does not follow the
// <prefix><version>/Dockerfile layout.
var ErrLayout = errors.New("invalid container layout")

// Target is one per-version build context.
type Target struct {
	Version    string
	Dir        string
	Dockerfile string
}

// Tag returns the image reference for the target in repo.
func (t Target) Tag(repo string) string {
	return repo + ":" + t.Version
}

// ThreadFree reports whether the target builds a free-threaded runtime.
func (t Target) ThreadFree() bool {
	return strings.HasSuffix(strings.ToLower(t.Version), "t")
}

// Discover returns one Target per sub-directory of root, sorted by directory
// name. Every sub-directory must be named <prefix><version> and contain a
// Dockerfile; any violation fails discovery as a whole.
func Discover(root, prefix string) ([]Target, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: container root '%s' does not exist", ErrLayout, root)
		}
		return nil, fmt.Errorf("reading container root: %w", err)
	}

	var targets []Target
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			return nil, fmt.Errorf("%w: unexpected directory name '%s' (expected prefix '%s')", ErrLayout, name, prefix)
		}
		version := strings.TrimPrefix(name, prefix)
		dir := filepath.Join(root, name)
		dockerfile := filepath.Join(dir, "Dockerfile")
		if _, err := os.Stat(dockerfile); err != nil {
			return nil, fmt.Errorf("%w: missing Dockerfile for version %s: %s", ErrLayout, version, dockerfile)
		}
		targets = append(targets, Target{Version: version, Dir: dir, Dockerfile: dockerfile})
	}
	return targets, nil
}
