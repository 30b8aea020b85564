package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands "~" and a leading "~/" to the user's home directory.
// Other paths, including "~user/...", are returned unchanged.
func ExpandHome(path string) (string, error) {
	rest, ok := homeRelative(path)
	if !ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if rest == "" {
		return home, nil
	}
	return filepath.Join(home, rest), nil
}

func homeRelative(path string) (string, bool) {
	if path == "~" {
		return "", true
	}
	for _, sep := range []string{"/", string(filepath.Separator)} {
		if strings.HasPrefix(path, "~"+sep) {
			return path[len("~"+sep):], true
		}
	}
	return "", false
}

// RemoveFiles deletes each path, treating already-missing files as removed.
// It returns how many files it actually deleted and the first other error.
func RemoveFiles(paths ...string) (int, error) {
	n := 0
	var first error
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := os.Remove(p)
		switch {
		case err == nil:
			n++
		case errors.Is(err, os.ErrNotExist):
		default:
			if first == nil {
				first = fmt.Errorf("remove %s: %w", p, err)
			}
		}
	}
	return n, first
}
