package pathfind

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	CredentialsDirName = "credentials"
	FeatherDirName     = "feather"
)

var ErrNotFound = errors.New("directory not found in any parent")

// Finder searches parent directories on a filesystem.
type Finder struct {
	Fs afero.Fs
}

// New returns a Finder over the OS filesystem.
func New() *Finder {
	return &Finder{Fs: afero.NewOsFs()}
}

// FindAncestorDir walks from start toward the filesystem root and returns
// the first <ancestor>/<name> that is a directory. start may be a file or a
// directory and is included in the walk. The root itself is not probed.
func (f *Finder) FindAncestorDir(start, name string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for current != filepath.Dir(current) {
		candidate := filepath.Join(current, name)
		if ok, err := afero.IsDir(f.Fs, candidate); err == nil && ok {
			return candidate, nil
		}
		current = filepath.Dir(current)
	}

	return "", fmt.Errorf("%w: %q above %s", ErrNotFound, name, start)
}

// CredentialsDir finds the nearest credentials directory above start.
func (f *Finder) CredentialsDir(start string) (string, error) {
	return f.FindAncestorDir(start, CredentialsDirName)
}

// FeatherDir finds the nearest feather directory above start.
func (f *Finder) FeatherDir(start string) (string, error) {
	return f.FindAncestorDir(start, FeatherDirName)
}

// FindAncestorDir is a shorthand for New().FindAncestorDir.
func FindAncestorDir(start, name string) (string, error) {
	return New().FindAncestorDir(start, name)
}
