package fileops

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar"
)

// Exists reports whether path can be stat'ed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// AnyFile returns the first of the given names that is a regular file under
// dir, and whether one was found.
func AnyFile(dir string, names ...string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if IsFile(p) {
			return p, true
		}
	}
	return "", false
}

// CountGlob counts regular files under dir matching pattern, a slash-separated
// doublestar glob relative to dir ("**/*.php" recurses). A missing directory
// counts zero.
func CountGlob(dir, pattern string) int {
	matches, err := doublestar.Glob(filepath.Join(dir, filepath.FromSlash(pattern)))
	if err != nil {
		return 0
	}
	n := 0
	for _, m := range matches {
		if IsFile(m) {
			n++
		}
	}
	return n
}
