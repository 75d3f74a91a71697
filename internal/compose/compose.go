// Package compose drives the docker-compose development environment.
package compose

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/devrig-io/devrig/internal/file"
	"github.com/devrig-io/devrig/internal/sh"
)

// Seeded lists the marker files created once from their dist templates
// before the environment first starts, mirroring the file-existence rules
// the old Makefile used.
var Seeded = []struct {
	Target    string
	Templates []string
}{
	{".env", []string{".env.dist", ".env.template"}},
	{".env.test", []string{".env.test.dist", ".env.test.template"}},
	{"docker-compose.override.yml", []string{"docker-compose.override.yml.dist"}},
}

// Service wraps the docker-compose lifecycle for one project.
type Service struct {
	Env     *sh.Env
	Log     *log.Logger
	File    string
	Project string
}

// Up seeds missing environment files and starts the containers detached.
func (s *Service) Up(ctx context.Context) error {
	if err := s.seedFiles(); err != nil {
		return err
	}

	return s.run(ctx, "up", "-d")
}

// Down stops and removes the containers, including orphans.
func (s *Service) Down(ctx context.Context) error {
	return s.run(ctx, "down", "--remove-orphans")
}

// Reset tears the environment down with its volumes and brings it back up.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.run(ctx, "down", "--remove-orphans", "--volumes"); err != nil {
		return err
	}

	return s.Up(ctx)
}

// Start starts previously created containers.
func (s *Service) Start(ctx context.Context) error {
	return s.run(ctx, "start")
}

// Stop stops the containers without removing them.
func (s *Service) Stop(ctx context.Context) error {
	return s.run(ctx, "stop")
}

func (s *Service) run(ctx context.Context, args ...string) error {
	base := []string{"-f", s.File}
	if s.Project != "" {
		base = append(base, "-p", s.Project)
	}

	err := s.Env.RunV(ctx, "docker-compose", append(base, args...)...)
	if err != nil {
		return fmt.Errorf("docker-compose %s: %w", args[0], err)
	}

	return nil
}

func (s *Service) seedFiles() error {
	for _, seed := range Seeded {
		created, err := file.Seed(seed.Target, seed.Templates...)
		if err != nil {
			return err
		}

		if created {
			s.Log.Info("seeded file from template", "file", seed.Target)
		}
	}

	return nil
}
