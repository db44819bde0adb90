// Package index holds the process-wide set of discovered packages.
//
// The index has exactly two states. It starts Empty; the first EnsureLoaded
// runs a full discovery pass and moves it to Populated. From then on it is
// never refreshed implicitly: the only way to pick up filesystem changes is
// Reload, which builds a complete replacement and swaps it in under the write
// lock, so readers see either the old contents or the new ones and never a
// partially rebuilt index.
package index

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"monoscope/internal/catalog"
	"monoscope/internal/discovery"
	"monoscope/internal/logging"
	"monoscope/internal/repository"
)

// ErrPackageNotFound is returned by Get for an unknown name.
var ErrPackageNotFound = errors.New("package not found")

// ErrNotLoaded is returned by reads issued before the index is populated.
var ErrNotLoaded = errors.New("index not loaded")

// State is the index lifecycle state.
type State int

const (
	StateEmpty State = iota
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Discoverer produces the packages for one full pass.
type Discoverer interface {
	Discover() (*discovery.Result, error)
}

// RevisionFunc resolves the VCS revision of the monorepo root.
type RevisionFunc func(root string) (repository.Revision, error)

// Snapshot describes the currently loaded contents.
type Snapshot struct {
	State    State               `json:"-"`
	LoadedAt time.Time           `json:"loadedAt"`
	Packages int                 `json:"packages"`
	Skipped  int                 `json:"skipped"`
	Revision repository.Revision `json:"revision"`
}

// Index maps package name to description, in discovery order.
type Index struct {
	root       string
	discoverer Discoverer
	revision   RevisionFunc
	logger     *logging.AppLogger
	now        func() time.Time

	// loadMu serializes discovery passes; mu guards the fields below.
	loadMu sync.Mutex
	mu     sync.RWMutex

	state    State
	order    []string
	byName   map[string]catalog.PackageDescription
	snapshot Snapshot
}

// New returns an Empty index. root is only used to resolve the revision.
func New(root string, d Discoverer, logger *logging.AppLogger) *Index {
	return &Index{
		root:       root,
		discoverer: d,
		revision:   repository.Head,
		logger:     logger,
		now:        time.Now,
		byName:     map[string]catalog.PackageDescription{},
	}
}

// WithRevisionFunc overrides how the root's revision is resolved.
func (ix *Index) WithRevisionFunc(fn RevisionFunc) *Index {
	ix.revision = fn
	return ix
}

// State returns the current lifecycle state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// EnsureLoaded populates the index if it is Empty. It is a no-op once
// Populated, regardless of filesystem changes.
func (ix *Index) EnsureLoaded() error {
	if ix.State() == StatePopulated {
		return nil
	}

	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()
	if ix.State() == StatePopulated {
		return nil
	}
	return ix.load()
}

// Reload discards the current contents and runs a full discovery pass. If the
// pass fails the index is left Empty and the error returned.
func (ix *Index) Reload() error {
	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()
	return ix.load()
}

// load must hold loadMu.
func (ix *Index) load() error {
	result, err := ix.discoverer.Discover()
	if err != nil {
		ix.swap(StateEmpty, nil, map[string]catalog.PackageDescription{}, Snapshot{})
		return fmt.Errorf("failed to build index: %w", err)
	}

	order := make([]string, 0, len(result.Packages))
	byName := make(map[string]catalog.PackageDescription, len(result.Packages))
	for _, p := range result.Packages {
		if prev, dup := byName[p.Name]; dup {
			// last discovered wins, first position kept
			ix.logger.Warn("Duplicate package name, later definition wins",
				"name", p.Name,
				"replaced", prev.RootPath,
				"by", p.RootPath,
			)
		} else {
			order = append(order, p.Name)
		}
		byName[p.Name] = p.Clone()
	}

	rev, err := ix.revision(ix.root)
	if err != nil {
		ix.logger.Warn("Cannot resolve repository revision", "root", ix.root, "error", err)
	}

	snap := Snapshot{
		State:    StatePopulated,
		LoadedAt: ix.now(),
		Packages: len(order),
		Skipped:  len(result.Skipped),
		Revision: rev,
	}
	ix.swap(StatePopulated, order, byName, snap)
	ix.logger.Info("Index loaded", "packages", snap.Packages, "revision", rev.String())
	return nil
}

func (ix *Index) swap(state State, order []string, byName map[string]catalog.PackageDescription, snap Snapshot) {
	ix.mu.Lock()
	from := ix.state
	ix.state = state
	ix.order = order
	ix.byName = byName
	ix.snapshot = snap
	ix.mu.Unlock()

	ix.logger.LogStateTransition("index", from.String(), state.String())
}

// Snapshot returns metadata about the loaded contents.
func (ix *Index) Snapshot() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s := ix.snapshot
	s.State = ix.state
	return s
}

// Len returns the number of packages.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.order)
}

// Get returns a copy of the named package.
func (ix *Index) Get(name string) (catalog.PackageDescription, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.state != StatePopulated {
		return catalog.PackageDescription{}, ErrNotLoaded
	}
	p, ok := ix.byName[name]
	if !ok {
		return catalog.PackageDescription{}, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	return p.Clone(), nil
}

// All returns copies of every package in index order.
func (ix *Index) All() []catalog.PackageDescription {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]catalog.PackageDescription, 0, len(ix.order))
	for _, name := range ix.order {
		out = append(out, ix.byName[name].Clone())
	}
	return out
}
