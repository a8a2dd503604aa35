package export

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExpandDate replaces a "{date}" token in path with t in "2006-01-02" form,
// so a history log can roll over daily.
func ExpandDate(path string, t time.Time) string {
	return strings.ReplaceAll(path, "{date}", t.Format("2006-01-02"))
}

// EnsureDir creates the directory component of path (equivalent to mkdir -p)
// with mode 0755. It is a no-op if the directory already exists.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
