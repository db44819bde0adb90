package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one direct child of a listed directory.
type Entry struct {
	// Name is the base name including any extension
	Name string

	// Path is the absolute (or dir-joined) path of the entry
	Path string

	IsDir bool
}

// Stem returns the base name without its final extension.
func (e Entry) Stem() string {
	return strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
}

// ListOptions controls which children ListEntries returns.
type ListOptions struct {
	// Dirs and Files select entry kinds. Both false means both kinds.
	Dirs  bool
	Files bool

	// SkipPrefixes drops entries whose name starts with any prefix.
	SkipPrefixes []string

	// Filter, when set, must return true for an entry to be kept.
	Filter func(name string) bool
}

var (
	// FilesOnly lists visible regular files.
	FilesOnly = &ListOptions{Files: true, SkipPrefixes: []string{"."}}

	// PackageDirs lists candidate package directories: visible, and not
	// starting with an underscore.
	PackageDirs = &ListOptions{Dirs: true, SkipPrefixes: []string{"_", "."}}
)

// FilesWithExt lists visible regular files whose extension is exactly ext
// (for example ".php").
func FilesWithExt(ext string) *ListOptions {
	return &ListOptions{
		Files:        true,
		SkipPrefixes: FilesOnly.SkipPrefixes,
		Filter: func(name string) bool {
			return filepath.Ext(name) == ext
		},
	}
}

// ListEntries returns the direct children of dir in name order. It does not
// recurse. Symlinked directories are followed for the IsDir check; dangling
// links are dropped.
func ListEntries(dir string, opts *ListOptions) ([]Entry, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	wantAll := !opts.Dirs && !opts.Files
	var result []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if hasAnyPrefix(name, opts.SkipPrefixes) {
			continue
		}
		if opts.Filter != nil && !opts.Filter(name) {
			continue
		}

		path := filepath.Join(dir, name)
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		} else if !isDir && !de.Type().IsRegular() {
			// sockets, devices, pipes
			continue
		}

		if !wantAll && ((isDir && !opts.Dirs) || (!isDir && !opts.Files)) {
			continue
		}
		result = append(result, Entry{Name: name, Path: path, IsDir: isDir})
	}
	return result, nil
}

// Stems lists the files directly inside dir selected by opts (FilesOnly when
// nil) and returns their stems. A missing or unreadable directory yields nil.
func Stems(dir string, opts *ListOptions) []string {
	if opts == nil {
		opts = FilesOnly
	}
	entries, err := ListEntries(dir, opts)
	if err != nil {
		return nil
	}
	stems := make([]string, 0, len(entries))
	for _, e := range entries {
		stems = append(stems, e.Stem())
	}
	return stems
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
