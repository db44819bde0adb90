// Package repository reads version-control metadata for the monorepo root.
//
// The index records the git revision it was built from so a caller can tell
// whether a loaded snapshot is stale relative to the working tree. A root
// that is not inside a git repository simply has no revision; this is never
// an error for discovery.
//
//	rev, err := repository.Head("/srv/monorepo/packages")
//	if err != nil { /* unexpected git failure */ }
//	if rev.Known() { fmt.Println(rev.Short()) }
package repository
