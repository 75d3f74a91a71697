package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/devrig-io/devrig/internal/config"
)

func TestDefaultsDeriveFromGoMod(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "go.mod"), "module example.com/acme/ordersvc\n\ngo 1.25\n")
	chdir(t, dir)

	cfg := config.Default()
	g.Expect(cfg.Package).To(Equal("example.com/acme/ordersvc"))
	g.Expect(cfg.Binary).To(Equal("ordersvc"))
	g.Expect(cfg.Compose.Project).To(Equal("ordersvc"))
	g.Expect(cfg.Tools.Dir).To(Equal("bin"))
	g.Expect(cfg.Release.Sign).To(BeTrue())
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())
	t.Setenv("VERSION", "2.4.1")
	t.Setenv("DOCKER_TAG", "2.4.1-rc1")
	t.Setenv("CGO_ENABLED", "1")
	t.Setenv("VERBOSE", "true")

	cfg, err := config.Load()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Version).To(Equal("2.4.1"))
	g.Expect(cfg.Docker.Tag).To(Equal("2.4.1-rc1"))
	g.Expect(cfg.CGOEnabled).To(Equal("1"))
	g.Expect(cfg.Verbose).To(BeTrue())
}

func TestUnmappedEnvironmentIsIgnored(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())
	t.Setenv("PATH_LIKE_NOISE", "ignored")

	cfg, err := config.Load()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Tools.GolangciVersion).To(Equal("1.64.8"))
}

func TestDotenvFileFeedsOverrides(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, ".env"), "DOCKER_REGISTRY=registry.example.com/\nBINARY=api\n")
	chdir(t, dir)

	// godotenv never overwrites pre-set variables, so clear any leakage.
	t.Setenv("DOCKER_REGISTRY", "")
	g.Expect(os.Unsetenv("DOCKER_REGISTRY")).To(Succeed())
	t.Setenv("BINARY", "")
	g.Expect(os.Unsetenv("BINARY")).To(Succeed())

	cfg, err := config.Load(".env")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Binary).To(Equal("api"))
	g.Expect(cfg.Docker.Registry).To(Equal("registry.example.com"))
}

func TestMissingDotenvFileIsFine(t *testing.T) {
	g := NewWithT(t)

	chdir(t, t.TempDir())

	_, err := config.Load(".env", ".env.local")
	g.Expect(err).NotTo(HaveOccurred())
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

func mustWrite(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
