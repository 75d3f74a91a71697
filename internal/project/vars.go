// Package project computes the build variables (version, commit hash, build
// date, docker tag) that get stamped into binaries and images.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/devrig-io/devrig/internal/config"
)

// Vars are the resolved build variables, in the order they are printed.
type Vars struct {
	Package    string
	Binary     string
	Version    string
	CommitHash string
	BuildDate  string
	DockerTag  string
	GOOS       string
	CGOEnabled string
}

// Var is a single named variable.
type Var struct {
	Name  string
	Value string
}

// Resolve computes the variables for the repository rooted at dir.
// Environment overrides from cfg win over git-derived values; git is only
// consulted for values that remain unset.
func Resolve(cfg *config.Config, dir string) (Vars, error) {
	vars := Vars{
		Package:    cfg.Package,
		Binary:     cfg.Binary,
		Version:    cfg.Version,
		CommitHash: cfg.CommitHash,
		BuildDate:  cfg.BuildDate,
		DockerTag:  cfg.Docker.Tag,
		GOOS:       cfg.GOOS,
		CGOEnabled: cfg.CGOEnabled,
	}

	if vars.Version == "" || vars.CommitHash == "" {
		desc, err := describe(dir)
		if err != nil {
			return Vars{}, fmt.Errorf("describing repository: %w", err)
		}

		if vars.Version == "" {
			vars.Version = desc.version
		}

		if vars.CommitHash == "" {
			vars.CommitHash = desc.shortHash
		}
	}

	if vars.BuildDate == "" {
		vars.BuildDate = time.Now().UTC().Format(time.RFC3339)
	}

	if vars.DockerTag == "" {
		vars.DockerTag = SanitizeDockerTag(vars.Version)
	}

	return vars, nil
}

// List returns the variables as printable name/value pairs.
func (v Vars) List() []Var {
	return []Var{
		{"PACKAGE", v.Package},
		{"BINARY", v.Binary},
		{"VERSION", v.Version},
		{"COMMIT_HASH", v.CommitHash},
		{"BUILD_DATE", v.BuildDate},
		{"DOCKER_TAG", v.DockerTag},
		{"GOOS", v.GOOS},
		{"CGO_ENABLED", v.CGOEnabled},
	}
}

// Lookup finds a variable case-insensitively, returning the canonical entry
// so callers print the real name regardless of how the user spelled it.
func (v Vars) Lookup(name string) (Var, bool) {
	for _, entry := range v.List() {
		if strings.EqualFold(entry.Name, name) {
			return entry, true
		}
	}

	return Var{}, false
}

// SanitizeDockerTag converts a version string into a valid image tag: "+"
// build metadata separators and any other disallowed characters become "-".
func SanitizeDockerTag(version string) string {
	var b strings.Builder

	for _, r := range version {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	tag := b.String()
	if len(tag) > maxDockerTagLen {
		tag = tag[:maxDockerTagLen]
	}

	return tag
}

const maxDockerTagLen = 128
