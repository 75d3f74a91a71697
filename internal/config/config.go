// Package config resolves devrig settings from defaults, the project's .env
// file, and the process environment, in that precedence order.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/mod/modfile"
)

// Config holds every knob the spec's environment variables expose, plus the
// project settings that used to live at the top of the Makefile.
type Config struct {
	// Package is the Go import path of the service's main package.
	Package string `koanf:"package"`
	// Binary is the output binary name under bin/.
	Binary string `koanf:"binary"`

	// GoVersion is the required toolchain constraint, e.g. "~1.25".
	GoVersion string `koanf:"go_version"`

	GOOS       string `koanf:"goos"`
	CGOEnabled string `koanf:"cgo_enabled"`
	Verbose    bool   `koanf:"verbose"`
	// Args holds extra arguments appended to go build invocations.
	Args string `koanf:"args"`

	// Version, CommitHash, and BuildDate override the values otherwise
	// computed from the git repository.
	Version    string `koanf:"version"`
	CommitHash string `koanf:"commit_hash"`
	BuildDate  string `koanf:"build_date"`

	Docker  Docker  `koanf:"docker"`
	Compose Compose `koanf:"compose"`
	Tools   Tools   `koanf:"tools"`
	API     API     `koanf:"api"`
	Release Release `koanf:"release"`
}

// Docker configures image builds.
type Docker struct {
	Registry string `koanf:"registry"`
	// Tag overrides the version-derived image tag.
	Tag         string `koanf:"tag"`
	File        string `koanf:"file"`
	DebugTarget string `koanf:"debug_target"`
}

// Compose configures the docker-compose environment.
type Compose struct {
	File    string `koanf:"file"`
	Project string `koanf:"project"`
}

// Tools pins the bootstrapped helper binaries.
type Tools struct {
	Dir             string `koanf:"dir"`
	DepVersion      string `koanf:"dep_version"`
	GolangciVersion string `koanf:"golangci_version"`
	GolangciSHA256  string `koanf:"golangci_sha256"`
}

// API configures OpenAPI validation and stub generation.
type API struct {
	Spec           string `koanf:"spec"`
	GeneratorImage string `koanf:"generator_image"`
	Generator      string `koanf:"generator"`
	Output         string `koanf:"output"`
}

// Release configures changelog bumping and tagging.
type Release struct {
	Changelog string `koanf:"changelog"`
	// Tag overrides the version-derived tag name.
	Tag       string `koanf:"tag"`
	TagPrefix string `koanf:"tag_prefix"`
	Sign      bool   `koanf:"sign"`
}

// envKeys maps the documented environment variables onto config paths.
// Only listed variables are read; the rest of the environment is ignored.
var envKeys = map[string]string{
	"PACKAGE":          "package",
	"BINARY":           "binary",
	"GO_VERSION":       "go_version",
	"GOOS":             "goos",
	"CGO_ENABLED":      "cgo_enabled",
	"VERBOSE":          "verbose",
	"ARGS":             "args",
	"VERSION":          "version",
	"COMMIT_HASH":      "commit_hash",
	"BUILD_DATE":       "build_date",
	"DOCKER_REGISTRY":  "docker.registry",
	"DOCKER_TAG":       "docker.tag",
	"DOCKER_FILE":      "docker.file",
	"COMPOSE_FILE":     "compose.file",
	"COMPOSE_PROJECT":  "compose.project",
	"DEP_VERSION":      "tools.dep_version",
	"GOLANGCI_VERSION": "tools.golangci_version",
	"GOLANGCI_SHA256":  "tools.golangci_sha256",
	"SWAGGER_FILE":     "api.spec",
	"GENERATOR_IMAGE":  "api.generator_image",
	"CHANGELOG":        "release.changelog",
	"TAG":              "release.tag",
}

// Default returns the baseline configuration, with Package and Binary
// derived from the working directory's go.mod when one is present.
func Default() Config {
	cfg := Config{
		GoVersion:  "~1.25",
		GOOS:       runtime.GOOS,
		CGOEnabled: "0",
		Docker: Docker{
			File:        "Dockerfile",
			DebugTarget: "debug",
		},
		Compose: Compose{
			File: "docker-compose.yml",
		},
		Tools: Tools{
			Dir:             "bin",
			DepVersion:      "0.5.4",
			GolangciVersion: "1.64.8",
		},
		API: API{
			Spec:           "swagger.yaml",
			GeneratorImage: "openapitools/openapi-generator-cli:v7.8.0",
			Generator:      "go-server",
			Output:         "internal/api",
		},
		Release: Release{
			Changelog: "CHANGELOG.md",
			TagPrefix: "v",
			Sign:      true,
		},
	}

	if modPath := modulePath("go.mod"); modPath != "" {
		cfg.Package = modPath
		cfg.Binary = modPath[strings.LastIndex(modPath, "/")+1:]
		cfg.Compose.Project = cfg.Binary
	}

	return cfg
}

// Load builds the effective configuration. Each dotenv file is loaded into
// the process environment first (missing files are fine), so its entries go
// through the same override path as real environment variables.
func Load(dotenvFiles ...string) (*Config, error) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			// Unmapped variables are skipped.
			return envKeys[key], value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Docker.Registry != "" {
		cfg.Docker.Registry = strings.TrimSuffix(cfg.Docker.Registry, "/")
	}

	return &cfg, nil
}

func modulePath(goMod string) string {
	data, err := os.ReadFile(goMod)
	if err != nil {
		return ""
	}

	return modfile.ModulePath(data)
}
