package record

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-capture/internal/util"
)

// CleanupOldRecordings removes WAV files in dir whose filename date is older
// than retentionDays. Files without a recognizable date are left alone.
// It returns the number of files deleted.
func CleanupOldRecordings(dir string, retentionDays int) (int, error) {
	if dir == "" || retentionDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, util.WrapError("read recording directory", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wav") {
			continue
		}

		date, ok := util.ExtractDateFromFilename(entry.Name())
		if !ok {
			continue
		}
		if !date.Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to delete old recording", "path", path, "error", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}
