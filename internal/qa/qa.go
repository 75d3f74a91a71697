// Package qa runs the test and lint targets, bootstrapping their pinned
// tools first.
package qa

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/devrig-io/devrig/internal/config"
	"github.com/devrig-io/devrig/internal/file"
	"github.com/devrig-io/devrig/internal/sh"
	"github.com/devrig-io/devrig/internal/toolbin"
)

const (
	golangciURL = "https://github.com/golangci/golangci-lint/releases/download/v{version}/golangci-lint-{version}-{os}-{arch}.tar.gz"
	depURL      = "https://github.com/golang/dep/releases/download/v{version}/dep-{os}-{arch}"
)

// Runner executes the quality targets.
type Runner struct {
	Env   *sh.Env
	Log   *log.Logger
	Cfg   *config.Config
	Tools *toolbin.Installer
}

// Test runs go test with race and coverage enabled. Entries from .env.test
// are injected into the child environment. Package arguments narrow the run
// to ./<pkg>/... paths; without any, the whole module is tested.
func (r *Runner) Test(ctx context.Context, packages ...string) error {
	env := r.Env

	if extra, err := testEnv(".env.test"); err != nil {
		return err
	} else if len(extra) > 0 {
		env = env.With(extra...)
	}

	args := []string{"test", "-race", "-cover"}
	if r.Cfg.Verbose {
		args = append(args, "-v")
	}

	if len(packages) == 0 {
		args = append(args, "./...")
	}

	for _, pkg := range packages {
		args = append(args, "./"+pkg+"/...")
	}

	if err := env.RunV(ctx, "go", args...); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}

	return nil
}

// Lint bootstraps the pinned golangci-lint and runs it.
func (r *Runner) Lint(ctx context.Context) error {
	bin, err := r.Tools.Ensure(ctx, toolbin.Tool{
		Name:    "golangci-lint",
		Version: r.Cfg.Tools.GolangciVersion,
		URL:     golangciURL,
		SHA256:  r.Cfg.Tools.GolangciSHA256,
	})
	if err != nil {
		return fmt.Errorf("bootstrapping golangci-lint: %w", err)
	}

	if err := r.Env.RunV(ctx, bin, "run", "./..."); err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	return nil
}

// Vendor ensures dependencies are vendored. Projects still on dep get the
// pinned dep binary; everything else vendors through the module cache.
func (r *Runner) Vendor(ctx context.Context) error {
	if !file.Exists("Gopkg.toml") {
		r.Log.Debug("no Gopkg.toml, vendoring via go mod")

		if err := r.Env.RunV(ctx, "go", "mod", "vendor"); err != nil {
			return fmt.Errorf("vendoring modules: %w", err)
		}

		return nil
	}

	bin, err := r.Tools.Ensure(ctx, toolbin.Tool{
		Name:    "dep",
		Version: r.Cfg.Tools.DepVersion,
		URL:     depURL,
	})
	if err != nil {
		return fmt.Errorf("bootstrapping dep: %w", err)
	}

	if err := r.Env.RunV(ctx, bin, "ensure"); err != nil {
		return fmt.Errorf("dep ensure: %w", err)
	}

	return nil
}

// testEnv reads the dotenv file into KEY=VALUE pairs. A missing file is not
// an error.
func testEnv(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	pairs := make([]string, 0, len(values))
	for key, value := range values {
		pairs = append(pairs, key+"="+value)
	}

	sort.Strings(pairs)

	return pairs, nil
}
