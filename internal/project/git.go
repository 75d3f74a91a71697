package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// maxDescribeDepth bounds the history walk when looking for the nearest tag.
const maxDescribeDepth = 1000

type description struct {
	version   string
	shortHash string
}

// describe derives a version string from the repository the way git-describe
// does: nearest reachable semver tag, distance, and short hash, with a
// -dirty suffix for a modified worktree. Repositories without commits or
// without a .git directory yield a dev fallback instead of an error.
func describe(dir string) (description, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return description{version: "0.0.0-dev", shortHash: "unknown"}, nil
	}

	if err != nil {
		return description{}, fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return description{version: "0.0.0-dev", shortHash: "unknown"}, nil
	}

	if err != nil {
		return description{}, fmt.Errorf("resolving HEAD: %w", err)
	}

	short := head.Hash().String()[:7]

	tags, err := semverTags(repo)
	if err != nil {
		return description{}, err
	}

	version := nearestTagVersion(repo, head.Hash(), tags, short)

	dirty, err := worktreeDirty(repo)
	if err != nil {
		return description{}, err
	}

	if dirty {
		version += "-dirty"
	}

	return description{version: version, shortHash: short}, nil
}

// semverTags maps commit hashes to the highest semver tag pointing at them.
// Annotated tags are resolved to their target commits.
func semverTags(repo *git.Repository) (map[plumbing.Hash]*semver.Version, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	tags := make(map[plumbing.Hash]*semver.Version)

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		version, err := semver.NewVersion(strings.TrimPrefix(ref.Name().Short(), "v"))
		if err != nil {
			// Not a release tag.
			return nil
		}

		target := ref.Hash()
		if tagObj, tagErr := repo.TagObject(ref.Hash()); tagErr == nil {
			target = tagObj.Target
		}

		if existing, ok := tags[target]; !ok || version.GreaterThan(existing) {
			tags[target] = version
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

func nearestTagVersion(
	repo *git.Repository,
	from plumbing.Hash,
	tags map[plumbing.Hash]*semver.Version,
	short string,
) string {
	fallback := "0.0.0-" + short

	if len(tags) == 0 {
		return fallback
	}

	commits, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return fallback
	}

	distance := 0

	var found *semver.Version

	_ = commits.ForEach(func(c *object.Commit) error {
		if version, ok := tags[c.Hash]; ok {
			found = version

			return storer.ErrStop
		}

		distance++
		if distance > maxDescribeDepth {
			return storer.ErrStop
		}

		return nil
	})

	switch {
	case found == nil:
		return fallback
	case distance == 0:
		return found.String()
	default:
		return fmt.Sprintf("%s-%d-g%s", found.String(), distance, short)
	}
}

func worktreeDirty(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading worktree status: %w", err)
	}

	return !status.IsClean(), nil
}
