// Package files wraps the filesystem chores of a test run: preparing output
// directories, saving artifacts and comparing expected against actual files.
package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/the-sdet/sdetkit/internal/common"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// fallbackTimestamp is used when a caller passes a pattern JavaLayout rejects.
const fallbackTimestamp = "20060102_150405"

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanOrCreateDirectory empties dir when it exists and creates it,
// parents included, when it does not.
func CleanOrCreateDirectory(dir string) error {
	ctx := context.Background()

	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		logging.Info(ctx, "Directory created", "dir", dir)
		return nil
	case err != nil:
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clean directory %s: %w", dir, err)
		}
	}
	logging.Info(ctx, "Directory cleaned", "dir", dir, "removed", len(entries))
	return nil
}

// CopyFile copies src to dst, creating dst's parent directories.
func CopyFile(src, dst string) error {
	return CopyFileAs(src, dst, "File")
}

// CopyFileAs is CopyFile with a label for the log line, e.g. "Screenshot".
func CopyFileAs(src, dst, what string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dst, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	logging.Info(context.Background(), what+" saved to: "+dst)
	return nil
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// BytesToTempFile writes data to a new file named temp*.<ext> in the
// system temp directory and returns its path.
func BytesToTempFile(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "temp*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

// NameWithTimestamp returns name + "_" + the current time rendered with a
// SimpleDateFormat pattern such as "yyyyMMdd_HHmmss".
func NameWithTimestamp(name, pattern string) string {
	stamp, err := common.FormatNow(pattern)
	if err != nil {
		logging.Warn(context.Background(), "Invalid timestamp pattern, using default",
			"pattern", pattern, "error", err)
		stamp = time.Now().Format(fallbackTimestamp)
	}
	return name + "_" + stamp
}
