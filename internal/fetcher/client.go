package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"shorts/internal/config"
)

// Client invokes the yt-dlp binary.
type Client struct {
	Binary         string
	Format         string
	OutputTemplate string
	SocketTimeout  int
	Retries        int
}

// NewClient builds a client from the [fetcher] configuration section.
func NewClient(cfg config.Fetcher) *Client {
	return &Client{
		Binary:         cfg.Binary,
		Format:         cfg.Format,
		OutputTemplate: cfg.OutputTemplate,
		SocketTimeout:  cfg.SocketTimeout,
		Retries:        cfg.Retries,
	}
}

// ExecError describes a yt-dlp run that could not start or exited non-zero.
type ExecError struct {
	// Unavailable is set when the binary could not be started at all.
	Unavailable bool
	Stderr      string
	Err         error
}

func (e *ExecError) Error() string {
	if detail := lastLine(e.Stderr); detail != "" {
		return detail
	}
	return e.Err.Error()
}

func (e *ExecError) Unwrap() error { return e.Err }

// Args returns the yt-dlp argument list for url.
func (c *Client) Args(url, scratchDir string) []string {
	return []string{
		"--no-progress",
		"--no-simulate",
		"--dump-single-json",
		"--no-playlist",
		"-f", c.Format,
		"--socket-timeout", strconv.Itoa(c.SocketTimeout),
		"--retries", strconv.Itoa(c.Retries),
		"-o", c.TemplatePath(scratchDir),
		url,
	}
}

// TemplatePath joins the output template onto scratchDir.
func (c *Client) TemplatePath(scratchDir string) string {
	return filepath.Join(scratchDir, c.OutputTemplate)
}

// Download fetches url into scratchDir and returns the metadata yt-dlp printed.
func (c *Client) Download(ctx context.Context, url, scratchDir string) (Metadata, error) {
	binary := strings.TrimSpace(c.Binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	cmd := exec.CommandContext(ctx, binary, c.Args(url, scratchDir)...)
	cmd.Dir = scratchDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var pathErr *fs.PathError
		unavailable := errors.Is(err, exec.ErrNotFound) || errors.As(err, &pathErr)
		return Metadata{}, &ExecError{Unavailable: unavailable, Stderr: stderr.String(), Err: err}
	}
	return ParseMetadata(stdout.Bytes())
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
