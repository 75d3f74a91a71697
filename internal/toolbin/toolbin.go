// Package toolbin bootstraps pinned helper binaries (golangci-lint, dep)
// into the project's bin directory. Each version gets its own file, so a
// version bump in configuration triggers a fresh download, exactly like the
// Makefile's versioned marker binaries did.
package toolbin

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/devrig-io/devrig/internal/file"
)

// Tool describes one pinned binary.
type Tool struct {
	Name    string
	Version string
	// URL may contain {version}, {os}, and {arch} placeholders.
	URL string
	// SHA256 optionally pins the archive digest.
	SHA256 string
}

// Installer downloads tools on demand.
type Installer struct {
	Client *resty.Client
	Log    *log.Logger
	Dir    string
}

// NewInstaller returns an installer with retrying HTTP transport.
func NewInstaller(dir string, logger *log.Logger) *Installer {
	client := resty.New().
		SetTimeout(2 * time.Minute).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Installer{Client: client, Log: logger, Dir: dir}
}

// Ensure returns the path to the versioned binary, downloading it first when
// absent.
func (i *Installer) Ensure(ctx context.Context, tool Tool) (string, error) {
	path := i.BinaryPath(tool)
	if file.Exists(path) {
		return path, nil
	}

	if err := os.MkdirAll(i.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", i.Dir, err)
	}

	url := ExpandURL(tool)
	i.Log.Info("downloading tool", "tool", tool.Name, "version", tool.Version, "url", url)

	tmp, err := os.CreateTemp(i.Dir, tool.Name+"-*.download")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()
	_ = tmp.Close()

	defer os.Remove(tmpPath)

	resp, err := i.Client.R().SetContext(ctx).SetOutput(tmpPath).Get(url)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", tool.Name, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("downloading %s: unexpected status %s", tool.Name, resp.Status())
	}

	if tool.SHA256 != "" {
		if err := verifyChecksum(tmpPath, tool.SHA256); err != nil {
			return "", err
		}
	}

	// Install goes through a rename so a failed extraction never leaves a
	// partial file at the versioned path for the existence check to trust.
	install := tmpPath

	if strings.HasSuffix(url, ".tar.gz") || strings.HasSuffix(url, ".tgz") {
		extracted := tmpPath + ".extracted"
		defer os.Remove(extracted)

		if err := extractBinary(tmpPath, tool.Name, extracted); err != nil {
			return "", err
		}

		install = extracted
	}

	if err := os.Rename(install, path); err != nil {
		return "", fmt.Errorf("installing %s: %w", tool.Name, err)
	}

	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("marking %s executable: %w", path, err)
	}

	return path, nil
}

// BinaryPath is where the versioned binary lives.
func (i *Installer) BinaryPath(tool Tool) string {
	return filepath.Join(i.Dir, tool.Name+"-"+tool.Version)
}

// ExpandURL substitutes the {version}, {os}, and {arch} placeholders.
func ExpandURL(tool Tool) string {
	return strings.NewReplacer(
		"{version}", tool.Version,
		"{os}", runtime.GOOS,
		"{arch}", runtime.GOARCH,
	).Replace(tool.URL)
}

func verifyChecksum(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening download: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing download: %w", err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
	}

	return nil
}

// extractBinary pulls the named executable out of a gzipped tarball,
// matching on base name so nested archive layouts work.
func extractBinary(archive, name, dst string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("archive does not contain %q", name)
		}

		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != name {
			continue
		}

		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			return fmt.Errorf("creating %s: %w", dst, err)
		}

		_, err = io.Copy(out, tr)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}

		return nil
	}
}
