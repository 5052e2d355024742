// Package fileutil copies finished files into place without exposing partial
// writes to readers of the destination directory.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst with mode 0o644.
func CopyFile(src, dst string) error {
	_, err := copyAtomic(src, dst, 0o644)
	return err
}

// CopyFileMode copies src to dst and sets mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	_, err := copyAtomic(src, dst, mode)
	return err
}

// CopyFileVerified copies src to dst, checks that the byte count matches the
// source and returns the hex SHA-256 of the copied content. dst is left
// untouched when the copy does not verify.
func CopyFileVerified(src, dst string) (string, error) {
	return copyAtomic(src, dst, 0o644)
}

// copyAtomic writes into a hidden temp file next to dst and renames it over
// dst once the content is complete.
func copyAtomic(src, dst string, mode os.FileMode) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("copy %s: source is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), in)
	if err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp: %w", err)
	}
	if written != info.Size() {
		return "", fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return "", fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}
	committed = true
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
