package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify YYYY-MM-DD",
		Short: "Verify the integrity of an exported snapshot directory",
		Long: `Verify that every snapshot file for the given date decompresses and
contains one valid JSON document per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			dir := filepath.Join(cfg.Snapshot.Directory, date)

			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("reading snapshot directory: %w", err)
			}

			verified := 0
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || !isSnapshotFile(name) {
					continue
				}

				path := filepath.Join(dir, name)
				records, err := verifyFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}

				logger.Info("verified",
					zap.String("file", name),
					zap.Int("records", records),
				)
				verified++
			}

			if verified == 0 {
				return fmt.Errorf("no snapshot files found in %s", dir)
			}

			logger.Info("verification complete", zap.String("date", date), zap.Int("files", verified))
			return nil
		},
	}

	return cmd
}

func isSnapshotFile(name string) bool {
	return strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".jsonl.zst")
}

// verifyFile counts the records in a snapshot file, failing on the first
// line that is not a standalone JSON document.
func verifyFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	records := 0
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !json.Valid([]byte(text)) {
			return records, fmt.Errorf("invalid JSON on line %d", line)
		}
		records++
	}
	if err := scanner.Err(); err != nil {
		return records, err
	}

	return records, nil
}
