package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"

	"github.com/devrig-io/devrig/internal/sh"
)

// ErrDirtyWorktree is returned when a release is attempted with uncommitted
// changes present.
var ErrDirtyWorktree = errors.New("worktree has uncommitted changes; commit or stash them before releasing")

// Tagger commits the bumped changelog and creates the release tag. Tag
// creation shells out to git so the user's signing configuration applies.
type Tagger struct {
	Env       *sh.Env
	Log       *log.Logger
	Changelog string
	TagPrefix string
	// TagOverride replaces the computed tag name when set (the TAG
	// environment variable).
	TagOverride string
	Sign        bool
}

// EnsureClean fails when the repository at dir has uncommitted changes.
func EnsureClean(dir string) error {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("reading worktree status: %w", err)
	}

	if !status.IsClean() {
		return ErrDirtyWorktree
	}

	return nil
}

// CommitAndTag commits the changelog and creates the annotated release tag.
func (t *Tagger) CommitAndTag(ctx context.Context, version semver.Version) error {
	tag := t.TagName(version)
	message := "Release " + tag

	if err := t.Env.RunV(ctx, "git", "add", t.Changelog); err != nil {
		return fmt.Errorf("staging changelog: %w", err)
	}

	if err := t.Env.RunV(ctx, "git", "commit", "-m", message); err != nil {
		return fmt.Errorf("committing changelog: %w", err)
	}

	args := []string{"tag", "-a"}
	if t.Sign {
		args = []string{"tag", "-s"}
	}

	args = append(args, tag, "-m", message)

	if err := t.Env.RunV(ctx, "git", args...); err != nil {
		return fmt.Errorf("creating tag %s: %w", tag, err)
	}

	t.Log.Info("created release tag", "tag", tag, "signed", t.Sign)

	return nil
}

// TagName computes the tag for a version.
func (t *Tagger) TagName(version semver.Version) string {
	if t.TagOverride != "" {
		return t.TagOverride
	}

	return t.TagPrefix + version.String()
}
