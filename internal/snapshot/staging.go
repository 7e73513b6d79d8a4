// Package snapshot exports panel data to date-stamped JSONL archives.
// Files are written under a .staging directory and committed with atomic
// renames so a partial export never shadows a complete one.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Staging struct {
	baseDir     string
	stagingRoot string
}

func NewStaging(baseDir string) *Staging {
	return &Staging{
		baseDir:     baseDir,
		stagingRoot: filepath.Join(baseDir, ".staging"),
	}
}

func (s *Staging) FinalDir() string {
	return s.baseDir
}

func (s *Staging) StagingRoot() string {
	return s.stagingRoot
}

func (s *Staging) StagingDir(date string) string {
	return filepath.Join(s.stagingRoot, date)
}

func (s *Staging) FinalPath(date, filename string) string {
	return filepath.Join(s.baseDir, date, filename)
}

func (s *Staging) PrepareStaging(date string) error {
	return os.MkdirAll(s.StagingDir(date), 0750)
}

// WriteJSONL writes one JSON document per line to destPath. The file lands
// under a .tmp name first and is renamed into place when complete.
func (s *Staging) WriteJSONL(destPath string, rows []any, compress bool) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return 0, fmt.Errorf("creating directories: %w", err)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	err = encodeRows(f, rows, compress)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("writing snapshot: %w", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("stat temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	return info.Size(), nil
}

func encodeRows(f *os.File, rows []any, compress bool) error {
	if !compress {
		enc := json.NewEncoder(f)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(zw)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

// CommitStaging moves a completed staging date into the final directory.
func (s *Staging) CommitStaging(date string) error {
	stagingDir := s.StagingDir(date)
	finalDir := filepath.Join(s.baseDir, date)

	return filepath.Walk(stagingDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(finalDir, relPath)
		if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
			return err
		}

		return os.Rename(path, destPath)
	})
}

func (s *Staging) CleanupStaging(date string) error {
	return os.RemoveAll(s.StagingDir(date))
}
