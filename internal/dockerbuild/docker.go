// Package dockerbuild produces the service's container images.
package dockerbuild

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/devrig-io/devrig/internal/config"
	"github.com/devrig-io/devrig/internal/project"
	"github.com/devrig-io/devrig/internal/sh"
)

// Builder runs docker build with the computed image tag.
type Builder struct {
	Env  *sh.Env
	Log  *log.Logger
	Cfg  *config.Config
	Vars project.Vars
}

// Image builds the container image. Debug builds select the configured
// debug Dockerfile target and suffix the tag.
func (b *Builder) Image(ctx context.Context, debug bool) error {
	tag := b.Tag(debug)

	args := []string{
		"build",
		"-f", b.Cfg.Docker.File,
		"-t", tag,
		"--build-arg", "VERSION=" + b.Vars.Version,
		"--build-arg", "COMMIT_HASH=" + b.Vars.CommitHash,
		"--build-arg", "BUILD_DATE=" + b.Vars.BuildDate,
	}

	if debug {
		args = append(args, "--target", b.Cfg.Docker.DebugTarget)
	}

	args = append(args, ".")

	if err := b.Env.RunV(ctx, "docker", args...); err != nil {
		return fmt.Errorf("building image %s: %w", tag, err)
	}

	b.Log.Info("built image", "tag", tag)

	return nil
}

// Tag computes the full image reference.
func (b *Builder) Tag(debug bool) string {
	name := b.Cfg.Binary
	if b.Cfg.Docker.Registry != "" {
		name = b.Cfg.Docker.Registry + "/" + name
	}

	tag := name + ":" + b.Vars.DockerTag
	if debug {
		tag += "-debug"
	}

	return tag
}
