// Package fileops provides the read-only filesystem probes used while
// extracting package metadata and answering queries.
//
// Every probe is tolerant by construction: a path that cannot be stat'ed or
// read is reported as absent rather than failing the caller. This matches how
// discovery and queries treat optional artifacts: a missing routes file, an
// unreadable model or a directory removed between discovery and query are all
// negative signals, never errors.
//
// # Probes
//
//   - Exists / IsDir / IsFile: presence checks
//   - ListEntries: direct children of a directory, filtered (non-recursive)
//   - CountGlob: number of files matching a recursive glob under a directory
//   - ReadTextFile: bounded read of a source file
//
// # Example
//
//	entries, err := fileops.ListEntries(filepath.Join(root, "src", "Models"), fileops.FilesOnly)
//	if err != nil {
//	    // directory absent or unreadable: no models
//	}
//	for _, e := range entries {
//	    fmt.Println(e.Stem())
//	}
package fileops
