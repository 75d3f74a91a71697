package project_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	. "github.com/onsi/gomega"

	"github.com/devrig-io/devrig/internal/config"
	"github.com/devrig-io/devrig/internal/project"
)

func TestSanitizeDockerTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"1.2.3+build.7", "1.2.3-build.7"},
		{"1.2.3-rc.1", "1.2.3-rc.1"},
		{"feature/login", "feature-login"},
	}

	for _, c := range cases {
		got := project.SanitizeDockerTag(c.in)
		if got != c.want {
			t.Errorf("SanitizeDockerTag(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveHonorsOverrides(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := config.Default()
	cfg.Package = "example.com/acme/ordersvc"
	cfg.Binary = "ordersvc"
	cfg.Version = "9.9.9"
	cfg.CommitHash = "cafef00"
	cfg.BuildDate = "2026-08-29T00:00:00Z"

	vars, err := project.Resolve(&cfg, t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vars.Version).To(Equal("9.9.9"))
	g.Expect(vars.CommitHash).To(Equal("cafef00"))
	g.Expect(vars.BuildDate).To(Equal("2026-08-29T00:00:00Z"))
	g.Expect(vars.DockerTag).To(Equal("9.9.9"))
}

func TestResolveWithoutRepositoryFallsBack(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := config.Default()

	vars, err := project.Resolve(&cfg, t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vars.Version).To(Equal("0.0.0-dev"))
	g.Expect(vars.CommitHash).To(Equal("unknown"))
	g.Expect(vars.BuildDate).NotTo(BeEmpty())
}

func TestResolveUsesTagOnHead(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	repo := initRepo(g, dir)
	hash := commit(g, repo, dir, "README.md", "hello")

	_, err := repo.CreateTag("v1.2.3", hash, nil)
	g.Expect(err).NotTo(HaveOccurred())

	cfg := config.Default()

	vars, err := project.Resolve(&cfg, dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vars.Version).To(Equal("1.2.3"))
	g.Expect(vars.CommitHash).To(Equal(hash.String()[:7]))
	g.Expect(vars.DockerTag).To(Equal("1.2.3"))
}

func TestResolveCountsCommitsPastTag(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	repo := initRepo(g, dir)
	tagged := commit(g, repo, dir, "README.md", "hello")

	_, err := repo.CreateTag("v0.3.0", tagged, nil)
	g.Expect(err).NotTo(HaveOccurred())

	head := commit(g, repo, dir, "main.go", "package main")

	cfg := config.Default()

	vars, err := project.Resolve(&cfg, dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vars.Version).To(Equal("0.3.0-1-g" + head.String()[:7]))
}

func TestResolveMarksDirtyWorktree(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	repo := initRepo(g, dir)
	hash := commit(g, repo, dir, "README.md", "hello")

	_, err := repo.CreateTag("v2.0.0", hash, nil)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed"), 0o644)).To(Succeed())

	cfg := config.Default()

	vars, err := project.Resolve(&cfg, dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(vars.Version).To(Equal("2.0.0-dirty"))
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	vars := project.Vars{Version: "1.0.0"}

	entry, ok := vars.Lookup("version")
	g.Expect(ok).To(BeTrue())
	g.Expect(entry.Name).To(Equal("VERSION"))
	g.Expect(entry.Value).To(Equal("1.0.0"))

	_, ok = vars.Lookup("NOPE")
	g.Expect(ok).To(BeFalse())
}

func initRepo(g *WithT, dir string) *git.Repository {
	repo, err := git.PlainInit(dir, false)
	g.Expect(err).NotTo(HaveOccurred())

	return repo
}

func commit(g *WithT, repo *git.Repository, dir, name, content string) plumbing.Hash {
	g.Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())

	wt, err := repo.Worktree()
	g.Expect(err).NotTo(HaveOccurred())

	_, err = wt.Add(name)
	g.Expect(err).NotTo(HaveOccurred())

	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	g.Expect(err).NotTo(HaveOccurred())

	return hash
}
