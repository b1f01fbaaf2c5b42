package journal

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/spf13/afero"
)

// Prune deletes journal files of days older than retention, judged by the date in the file name.
// A non-positive retention keeps everything.
func Prune(dir string, retention time.Duration, now time.Time) (removed int, err error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := now.Add(-retention)

	err = afero.Walk(filesystem.API(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, ".jsonl") {
			return nil
		}

		day, err := time.ParseInLocation(layout, strings.TrimSuffix(filepath.Base(path), ".jsonl"), now.Location())
		if err != nil {
			return nil
		}

		// a day's file is complete once the day is over
		if day.AddDate(0, 0, 1).Before(cutoff) {
			if err := filesystem.API().Remove(path); err != nil {
				return err
			}
			removed++
		}

		return nil
	})

	return removed, err
}
