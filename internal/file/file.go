// Package file provides the filesystem checks devrig targets are triggered
// by: glob matching, input/output staleness, and one-time template seeding.
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoPatterns is returned when a match is requested without patterns.
var ErrNoPatterns = errors.New("no patterns provided")

// Match expands one or more glob patterns (including ** and {a,b}) against
// the working directory and returns the deduplicated, sorted matches.
func Match(patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	seen := make(map[string]bool)

	var matches []string

	for _, pattern := range patterns {
		list, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("matching pattern %q: %w", pattern, err)
		}

		for _, path := range list {
			if !seen[path] {
				seen[path] = true
				matches = append(matches, path)
			}
		}
	}

	sort.Strings(matches)

	return matches, nil
}

// Newer reports whether any input is newer than the oldest output. Missing
// or unmatched outputs count as stale, as do unmatched inputs: with no
// sources to compare mtimes against, skipping would be a silent no-op.
func Newer(inputs, outputs []string) (bool, error) {
	if len(inputs) == 0 {
		return false, errors.New("no input patterns provided")
	}

	inMatches, err := Match(inputs...)
	if err != nil {
		return false, err
	}

	outMatches, err := Match(outputs...)
	if err != nil {
		return false, err
	}

	if len(outMatches) == 0 || len(inMatches) == 0 {
		return true, nil
	}

	newestIn, err := newestModTime(inMatches)
	if err != nil {
		return false, err
	}

	oldestOut, err := oldestModTime(outMatches)
	if err != nil {
		return false, err
	}

	return newestIn.After(oldestOut), nil
}

// Exists reports whether the path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// Seed creates dst from the first existing template when dst is absent.
// It reports whether a copy happened; an absent dst with no template is not
// an error, so callers can treat seeding as best-effort.
func Seed(dst string, templates ...string) (bool, error) {
	if Exists(dst) {
		return false, nil
	}

	for _, tpl := range templates {
		if !Exists(tpl) {
			continue
		}

		if err := copyFile(tpl, dst); err != nil {
			return false, fmt.Errorf("seeding %s from %s: %w", dst, tpl, err)
		}

		return true, nil
	}

	return false, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	return err
}

func newestModTime(paths []string) (time.Time, error) {
	var newest time.Time

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, err
		}

		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}

	return newest, nil
}

func oldestModTime(paths []string) (time.Time, error) {
	var oldest time.Time

	for i, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, err
		}

		if i == 0 || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}

	return oldest, nil
}
