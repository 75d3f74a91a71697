// Package gobuild compiles the service binary with stamped version
// information, after checking the installed toolchain.
package gobuild

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/devrig-io/devrig/internal/config"
	"github.com/devrig-io/devrig/internal/file"
	"github.com/devrig-io/devrig/internal/project"
	"github.com/devrig-io/devrig/internal/sh"
)

// Mode selects the build flavor.
type Mode int

const (
	// ModeDev is the default build.
	ModeDev Mode = iota
	// ModeRelease is a static, stripped build.
	ModeRelease
	// ModeDebug disables optimizations and inlining for delve.
	ModeDebug
)

var goVersionRe = regexp.MustCompile(`go(\d+\.\d+(?:\.\d+)?)`)

// Builder runs go build for the configured package.
type Builder struct {
	Env  *sh.Env
	Log  *log.Logger
	Cfg  *config.Config
	Vars project.Vars
}

// CheckToolchain verifies that the installed go version satisfies the
// configured constraint. A mismatch aborts the build with the required
// version in the message.
func (b *Builder) CheckToolchain(ctx context.Context) error {
	out, err := b.Env.Output(ctx, "go", "version")
	if err != nil {
		return fmt.Errorf("querying go version: %w", err)
	}

	installed, err := versionFromOutput(out)
	if err != nil {
		return err
	}

	ok, err := Satisfies(b.Cfg.GoVersion, installed)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("go version %s does not satisfy required %s; install a matching toolchain",
			installed, b.Cfg.GoVersion)
	}

	b.Log.Debug("toolchain ok", "installed", installed, "required", b.Cfg.GoVersion)

	return nil
}

// Build compiles the binary into the tools directory. Unless force is set,
// the compile is skipped when the binary is already newer than the sources.
func (b *Builder) Build(ctx context.Context, mode Mode, force bool) error {
	if err := b.CheckToolchain(ctx); err != nil {
		return err
	}

	out := b.OutputPath()

	if !force {
		stale, err := file.Newer([]string{"**/*.go", "go.mod"}, []string{out})
		if err != nil {
			return fmt.Errorf("checking staleness: %w", err)
		}

		if !stale {
			b.Log.Info("binary up to date", "path", out)

			return nil
		}
	}

	env := b.Env.With("GOOS="+b.Cfg.GOOS, "CGO_ENABLED="+cgoFor(mode, b.Cfg))

	err := env.RunV(ctx, "go", b.Args(mode)...)
	if err != nil {
		return fmt.Errorf("building %s: %w", b.Cfg.Binary, err)
	}

	b.Log.Info("built binary", "path", out, "version", b.Vars.Version)

	return nil
}

// Args returns the go build argument list for the given mode.
func (b *Builder) Args(mode Mode) []string {
	args := []string{"build", "-o", b.OutputPath()}

	ldflags := fmt.Sprintf("-X main.version=%s -X main.commitHash=%s -X main.buildDate=%s",
		b.Vars.Version, b.Vars.CommitHash, b.Vars.BuildDate)

	switch mode {
	case ModeRelease:
		ldflags += " -s -w"

		args = append(args, "-trimpath")
	case ModeDebug:
		args = append(args, "-gcflags", "all=-N -l")
	case ModeDev:
	}

	args = append(args, "-ldflags", ldflags)

	if extra := strings.Fields(b.Cfg.Args); len(extra) > 0 {
		args = append(args, extra...)
	}

	return append(args, b.Cfg.Package)
}

// OutputPath is where the compiled binary lands.
func (b *Builder) OutputPath() string {
	return filepath.Join(b.Cfg.Tools.Dir, b.Cfg.Binary)
}

// Satisfies reports whether an installed toolchain version meets a semver
// constraint like "~1.25" or ">=1.24 <1.27".
func Satisfies(constraint, installed string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parsing go version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(installed)
	if err != nil {
		return false, fmt.Errorf("parsing go version %q: %w", installed, err)
	}

	return c.Check(v), nil
}

func cgoFor(mode Mode, cfg *config.Config) string {
	if mode == ModeRelease {
		return "0"
	}

	return cfg.CGOEnabled
}

// versionFromOutput extracts "1.25.5" from "go version go1.25.5 linux/amd64".
func versionFromOutput(out string) (string, error) {
	match := goVersionRe.FindStringSubmatch(out)
	if match == nil {
		return "", fmt.Errorf("unrecognized go version output: %q", strings.TrimSpace(out))
	}

	return match[1], nil
}
