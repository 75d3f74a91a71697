package cli_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/devrig-io/devrig/internal/cli"
)

func TestVarCommandPrintsValue(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())
	t.Setenv("VERSION", "3.2.1")

	out := execute(g, "var", "VERSION")
	g.Expect(strings.TrimSpace(out)).To(Equal("3.2.1"))
}

func TestVarCommandExportForm(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())
	t.Setenv("VERSION", "3.2.1")
	t.Setenv("DOCKER_TAG", "3.2.1")

	out := execute(g, "var", "DOCKER_TAG", "--export")
	g.Expect(strings.TrimSpace(out)).To(Equal(`export DOCKER_TAG="3.2.1"`))

	// Lowercase spellings still export the canonical name.
	out = execute(g, "var", "docker_tag", "--export")
	g.Expect(strings.TrimSpace(out)).To(Equal(`export DOCKER_TAG="3.2.1"`))
}

func TestVarCommandRejectsUnknownName(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())

	root := cli.NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"var", "NOPE"})

	g.Expect(root.Execute()).To(MatchError(ContainSubstring("NOPE")))
}

func TestVarsCommandListsEveryVariable(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())
	t.Setenv("VERSION", "1.0.0")

	out := execute(g, "vars")

	for _, name := range []string{"PACKAGE", "BINARY", "VERSION", "COMMIT_HASH", "BUILD_DATE", "DOCKER_TAG", "GOOS", "CGO_ENABLED"} {
		g.Expect(out).To(ContainSubstring(name + "="))
	}
}

func TestHelpListsCommands(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())

	out := execute(g, "--help")

	for _, command := range []string{"env", "build", "image", "test", "lint", "vendor", "api", "release", "var", "vars"} {
		g.Expect(out).To(ContainSubstring(command))
	}
}

func execute(g *WithT, args ...string) string {
	var out bytes.Buffer

	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	g.Expect(root.Execute()).To(Succeed())

	return out.String()
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Cleanup(func() { _ = os.Chdir(prev) })
}
