// Package sh runs the external tools devrig orchestrates (go, docker,
// docker-compose, git) with cancellation and signal cleanup.
package sh

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Env is the execution environment for external commands. The zero value is
// not usable; construct one with Default and override fields for tests.
type Env struct {
	// ExecCommand builds the command. Swappable so tests can record argv
	// instead of spawning real processes.
	ExecCommand func(name string, args ...string) *exec.Cmd

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory for spawned commands. Empty means the
	// current directory.
	Dir string

	// Extra holds KEY=VALUE pairs appended to the inherited environment.
	Extra []string

	cleanup *cleanupManager
}

// Default returns an Env wired to the real OS.
func Default() *Env {
	return &Env{
		ExecCommand: exec.Command,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		cleanup:     defaultCleanup,
	}
}

// Run executes a command, streaming stdout/stderr. When ctx is cancelled the
// process and its children are killed.
func (e *Env) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.command(name, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Stdin = e.Stdin

	return e.wait(ctx, cmd)
}

// RunV executes a command like Run, printing it first.
func (e *Env) RunV(ctx context.Context, name string, args ...string) error {
	_, _ = fmt.Fprintln(e.Stdout, "+", FormatCommand(name, args))

	return e.Run(ctx, name, args...)
}

// Output executes a command and returns its combined output.
func (e *Env) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := e.command(name, args...)
	cmd.Stdin = e.Stdin

	var buf safeBuffer

	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := e.wait(ctx, cmd)

	return buf.String(), err
}

// With returns a copy of the Env with extra KEY=VALUE entries appended.
func (e *Env) With(extra ...string) *Env {
	clone := *e
	clone.Extra = append(append([]string(nil), e.Extra...), extra...)

	return &clone
}

// FormatCommand formats a command with display quoting.
func FormatCommand(name string, args []string) string {
	parts := make([]string, 0, 1+len(args))

	parts = append(parts, QuoteArg(name))
	for _, arg := range args {
		parts = append(parts, QuoteArg(arg))
	}

	return strings.Join(parts, " ")
}

// QuoteArg quotes a single argument for display.
func QuoteArg(value string) string {
	if value == "" {
		return `""`
	}

	if strings.ContainsAny(value, " \t\n\"") {
		return strconv.Quote(value)
	}

	return value
}

func (e *Env) command(name string, args ...string) *exec.Cmd {
	cmd := e.ExecCommand(name, args...)
	cmd.Dir = e.Dir

	if len(e.Extra) > 0 {
		cmd.Env = append(os.Environ(), e.Extra...)
	}

	setProcGroup(cmd)

	return cmd
}

// wait starts the command and waits for it, honoring ctx cancellation by
// killing the whole process tree.
func (e *Env) wait(ctx context.Context, cmd *exec.Cmd) error {
	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("starting %s: %w", cmd.Path, err)
	}

	if e.cleanup != nil {
		e.cleanup.register(cmd.Process)
		defer e.cleanup.unregister(cmd.Process)
	}

	done := make(chan error, 1)

	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("running %s: %w", cmd.Path, err)
		}

		return nil
	case <-ctx.Done():
		killTree(cmd.Process)
		<-done

		return fmt.Errorf("command cancelled: %w", ctx.Err())
	}
}
