// Package release promotes the changelog's unreleased section to a new
// version and tags the result.
package release

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Level selects which version component to bump.
type Level int

const (
	// Patch bumps the patch component.
	Patch Level = iota
	// Minor bumps the minor component and resets patch.
	Minor
	// Major bumps the major component and resets minor and patch.
	Major
)

// ParseLevel maps the release subcommand names to levels.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	default:
		return 0, fmt.Errorf("unknown release level %q (want patch, minor, or major)", name)
	}
}

func (l Level) String() string {
	switch l {
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// releasedRe matches Keep-a-Changelog release headers like "## [1.2.3] - 2026-01-02".
var releasedRe = regexp.MustCompile(`^## \[(\d+\.\d+\.\d+[^\]]*)\]`)

const unreleasedHeader = "## [Unreleased]"

// NextVersion returns the version after bumping current by level.
func NextVersion(current semver.Version, level Level) semver.Version {
	switch level {
	case Major:
		return current.IncMajor()
	case Minor:
		return current.IncMinor()
	default:
		return current.IncPatch()
	}
}

// CurrentVersion returns the most recent released version recorded in the
// changelog, or 0.0.0 when none has been released yet.
func CurrentVersion(changelog []byte) (semver.Version, error) {
	for _, line := range strings.Split(string(changelog), "\n") {
		match := releasedRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		version, err := semver.NewVersion(match[1])
		if err != nil {
			return semver.Version{}, fmt.Errorf("parsing changelog version %q: %w", match[1], err)
		}

		return *version, nil
	}

	return semver.Version{}, nil
}

// Bump rewrites the changelog, replacing the unreleased header with a fresh
// one followed by the new release header and date.
func Bump(changelog []byte, next semver.Version, date time.Time) ([]byte, error) {
	content := string(changelog)

	if !strings.Contains(content, unreleasedHeader) {
		return nil, fmt.Errorf("changelog has no %q section", unreleasedHeader)
	}

	replacement := fmt.Sprintf("%s\n\n## [%s] - %s",
		unreleasedHeader, next.String(), date.Format("2006-01-02"))

	return []byte(strings.Replace(content, unreleasedHeader, replacement, 1)), nil
}

// BumpFile promotes the unreleased section of the changelog at path and
// writes the result atomically. It returns the released version.
func BumpFile(path string, level Level) (semver.Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return semver.Version{}, fmt.Errorf("reading changelog: %w", err)
	}

	current, err := CurrentVersion(data)
	if err != nil {
		return semver.Version{}, err
	}

	next := NextVersion(current, level)

	bumped, err := Bump(data, next, time.Now())
	if err != nil {
		return semver.Version{}, err
	}

	if err := writeAtomic(path, bumped); err != nil {
		return semver.Version{}, fmt.Errorf("writing changelog: %w", err)
	}

	return next, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
