package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
)

// maxSuffix bounds the search for a free file name when two reports land
// in the same second.
const maxSuffix = 100

// FileArchive implements domain.ReportArchive as one text file per report.
type FileArchive struct {
	dir string
}

func New(dir string) *FileArchive {
	if dir == "" {
		dir = "."
	}
	return &FileArchive{dir: dir}
}

// Dir returns the directory reports are written to.
func (a *FileArchive) Dir() string { return a.dir }

// Append writes text to a new file and returns its path. Existing files
// are never touched; a numeric suffix is added on collision.
func (a *FileArchive) Append(kind string, at time.Time, text string) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", err
	}

	base := FileName(kind, at)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 0; i < maxSuffix; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		fp := filepath.Join(a.dir, name)

		f, err := os.OpenFile(fp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return "", err
		}
		if _, err := f.WriteString(text); err != nil {
			_ = f.Close()
			return "", err
		}
		return fp, f.Close()
	}
	return "", fmt.Errorf("no free report name for %s after %d attempts", base, maxSuffix)
}

// FileName builds the archive name for a report kind.
func FileName(kind string, at time.Time) string {
	if kind == domain.ArchiveWeeklyReport {
		return fmt.Sprintf("%s_%s.txt", kind, at.Format("20060102"))
	}
	return fmt.Sprintf("%s_%s.txt", kind, at.Format("20060102_150405"))
}
