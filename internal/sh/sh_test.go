package sh_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/devrig-io/devrig/internal/sh"
)

func TestQuoteArg(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", `""`},
		{"has space", `"has space"`},
		{"tab\there", `"tab\there"`},
		{`say "hi"`, `"say \"hi\""`},
	}

	for _, c := range cases {
		got := sh.QuoteArg(c.in)
		if got != c.want {
			t.Errorf("QuoteArg(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatCommand(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got := sh.FormatCommand("docker", []string{"build", "-t", "app:1.0 rc"})
	g.Expect(got).To(Equal(`docker build -t "app:1.0 rc"`))
}

func TestOutputCapturesBothStreams(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	env := sh.Default()

	out, err := env.Output(context.Background(), "sh", "-c", "echo one; echo two 1>&2")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("one"))
	g.Expect(out).To(ContainSubstring("two"))
}

func TestRunReportsCommandFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	env := sh.Default()
	env.Stdout = &strings.Builder{}
	env.Stderr = &strings.Builder{}

	err := env.Run(context.Background(), "sh", "-c", "exit 3")
	g.Expect(err).To(HaveOccurred())
}

func TestRunHonorsCancellation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	env := sh.Default()
	env.Stdout = &strings.Builder{}
	env.Stderr = &strings.Builder{}

	start := time.Now()
	err := env.Run(ctx, "sleep", "10")
	g.Expect(err).To(MatchError(ContainSubstring("cancelled")))
	g.Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
}

func TestRunVPrintsCommandFirst(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var stdout strings.Builder

	env := sh.Default()
	env.Stdout = &stdout

	err := env.RunV(context.Background(), "true")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stdout.String()).To(HavePrefix("+ true"))
}

func TestExecCommandIsInjectable(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var recorded [][]string

	env := sh.Default()
	env.ExecCommand = func(name string, args ...string) *exec.Cmd {
		recorded = append(recorded, append([]string{name}, args...))

		return exec.Command("true")
	}

	err := env.Run(context.Background(), "docker-compose", "up", "-d")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(recorded).To(HaveLen(1))
	g.Expect(recorded[0]).To(Equal([]string{"docker-compose", "up", "-d"}))
}

func TestWithAppendsEnvironment(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	env := sh.Default().With("GOOS=linux")

	out, err := env.Output(context.Background(), "sh", "-c", "echo $GOOS")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(strings.TrimSpace(out)).To(Equal("linux"))
}
