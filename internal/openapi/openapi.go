// Package openapi validates the API descriptor and generates server stubs
// from it via the containerized generator.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"

	"github.com/devrig-io/devrig/internal/config"
	"github.com/devrig-io/devrig/internal/sh"
)

// Document is the subset of an OpenAPI descriptor the validator inspects.
type Document struct {
	OpenAPI string                    `yaml:"openapi"`
	Swagger string                    `yaml:"swagger"`
	Info    Info                      `yaml:"info"`
	Paths   map[string]map[string]any `yaml:"paths"`
}

// Info is the descriptor's info block.
type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// Validate parses the descriptor and checks its structure: a recognized
// descriptor version, a populated info block, and at least one path whose
// operations carry operation IDs. All problems are reported at once.
func Validate(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var problems []string

	switch {
	case doc.OpenAPI == "" && doc.Swagger == "":
		problems = append(problems, "missing openapi/swagger version field")
	case doc.OpenAPI != "" && !strings.HasPrefix(doc.OpenAPI, "3."):
		problems = append(problems, fmt.Sprintf("unsupported openapi version %q", doc.OpenAPI))
	case doc.Swagger != "" && doc.Swagger != "2.0":
		problems = append(problems, fmt.Sprintf("unsupported swagger version %q", doc.Swagger))
	}

	if doc.Info.Title == "" {
		problems = append(problems, "info.title is empty")
	}

	if doc.Info.Version == "" {
		problems = append(problems, "info.version is empty")
	}

	if len(doc.Paths) == 0 {
		problems = append(problems, "no paths defined")
	}

	problems = append(problems, pathProblems(doc.Paths)...)

	if len(problems) > 0 {
		return nil, errors.New("invalid descriptor:\n  " + strings.Join(problems, "\n  "))
	}

	return &doc, nil
}

func pathProblems(paths map[string]map[string]any) []string {
	var problems []string

	for path, operations := range paths {
		if !strings.HasPrefix(path, "/") {
			problems = append(problems, fmt.Sprintf("path %q does not start with /", path))
		}

		for method, raw := range operations {
			if !httpMethods[strings.ToLower(method)] {
				// parameters, summary, extensions, etc.
				continue
			}

			op, ok := raw.(map[string]any)
			if !ok {
				problems = append(problems, fmt.Sprintf("%s %s: operation is not a mapping", method, path))

				continue
			}

			if id, _ := op["operationId"].(string); id == "" {
				problems = append(problems, fmt.Sprintf("%s %s: missing operationId", method, path))
			}
		}
	}

	return problems
}

// Generator produces server stubs using the containerized OpenAPI generator.
type Generator struct {
	Env *sh.Env
	Log *log.Logger
	Cfg *config.Config
}

// Generate validates the descriptor, then runs the generator image with the
// working directory mounted at /local.
func (g *Generator) Generate(ctx context.Context) error {
	if _, err := Validate(g.Cfg.API.Spec); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	args := []string{
		"run", "--rm",
		"-v", cwd + ":/local",
		g.Cfg.API.GeneratorImage,
		"generate",
		"-i", "/local/" + filepath.ToSlash(g.Cfg.API.Spec),
		"-g", g.Cfg.API.Generator,
		"-o", "/local/" + filepath.ToSlash(g.Cfg.API.Output),
	}

	if err := g.Env.RunV(ctx, "docker", args...); err != nil {
		return fmt.Errorf("generating API stubs: %w", err)
	}

	g.Log.Info("generated API stubs", "output", g.Cfg.API.Output)

	return nil
}
