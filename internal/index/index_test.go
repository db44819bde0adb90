package index

import (
	"errors"
	"sync"
	"testing"
	"time"

	"monoscope/internal/catalog"
	"monoscope/internal/discovery"
	"monoscope/internal/logging"
	"monoscope/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscoverer struct {
	mu     sync.Mutex
	calls  int
	result *discovery.Result
	err    error
}

func (f *fakeDiscoverer) Discover() (*discovery.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeDiscoverer) set(result *discovery.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result, f.err = result, err
}

func pkgs(names ...string) *discovery.Result {
	r := &discovery.Result{}
	for _, n := range names {
		r.Packages = append(r.Packages, catalog.PackageDescription{Name: n, Category: "crud", RootPath: "/repo/crud/" + n})
	}
	return r
}

func newTestIndex(d Discoverer) *Index {
	logger, _ := logging.NewTestLogger()
	return New("/repo", d, logger).WithRevisionFunc(func(string) (repository.Revision, error) {
		return repository.Revision{Hash: "abc123", Branch: "main"}, nil
	})
}

func names(ps []catalog.PackageDescription) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestIndex_StartsEmpty(t *testing.T) {
	ix := newTestIndex(&fakeDiscoverer{result: pkgs("a")})

	assert.Equal(t, StateEmpty, ix.State())
	assert.Zero(t, ix.Len())
	assert.Empty(t, ix.All())

	_, err := ix.Get("a")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestIndex_EnsureLoadedOnce(t *testing.T) {
	d := &fakeDiscoverer{result: pkgs("widget", "billing")}
	ix := newTestIndex(d)

	require.NoError(t, ix.EnsureLoaded())
	require.NoError(t, ix.EnsureLoaded())

	assert.Equal(t, 1, d.calls)
	assert.Equal(t, StatePopulated, ix.State())
	assert.Equal(t, []string{"widget", "billing"}, names(ix.All()))

	// Filesystem changes are invisible until an explicit reload.
	d.set(pkgs("widget", "billing", "new"), nil)
	require.NoError(t, ix.EnsureLoaded())
	assert.Equal(t, 2, ix.Len())

	require.NoError(t, ix.Reload())
	assert.Equal(t, 2, d.calls)
	assert.Equal(t, []string{"widget", "billing", "new"}, names(ix.All()))
}

func TestIndex_ReloadReplacesContents(t *testing.T) {
	d := &fakeDiscoverer{result: pkgs("a", "b")}
	ix := newTestIndex(d)
	require.NoError(t, ix.EnsureLoaded())

	d.set(pkgs("c"), nil)
	require.NoError(t, ix.Reload())

	_, err := ix.Get("a")
	assert.ErrorIs(t, err, ErrPackageNotFound)
	assert.Equal(t, []string{"c"}, names(ix.All()))
}

func TestIndex_DuplicateNames(t *testing.T) {
	r := &discovery.Result{Packages: []catalog.PackageDescription{
		{Name: "shared", Category: "crud", RootPath: "/repo/crud/shared"},
		{Name: "other", Category: "crud", RootPath: "/repo/crud/other"},
		{Name: "shared", Category: "blade", RootPath: "/repo/blade/shared"},
	}}
	ix := newTestIndex(&fakeDiscoverer{result: r})
	require.NoError(t, ix.EnsureLoaded())

	assert.Equal(t, []string{"shared", "other"}, names(ix.All()))
	p, err := ix.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, "blade", p.Category, "last discovered wins")
	assert.Equal(t, 2, ix.Snapshot().Packages)
}

func TestIndex_FailedLoad(t *testing.T) {
	d := &fakeDiscoverer{err: discovery.ErrRootUnreadable}
	ix := newTestIndex(d)

	err := ix.EnsureLoaded()
	require.Error(t, err)
	assert.ErrorIs(t, err, discovery.ErrRootUnreadable)
	assert.Equal(t, StateEmpty, ix.State())

	// A later call retries because the index is still empty.
	d.set(pkgs("a"), nil)
	require.NoError(t, ix.EnsureLoaded())
	assert.Equal(t, StatePopulated, ix.State())

	// A failed reload clears the index.
	d.set(nil, errors.New("disk gone"))
	require.Error(t, ix.Reload())
	assert.Equal(t, StateEmpty, ix.State())
	assert.Zero(t, ix.Len())
}

func TestIndex_ReturnsCopies(t *testing.T) {
	r := &discovery.Result{Packages: []catalog.PackageDescription{
		{Name: "widget", Models: []string{"Widget"}},
	}}
	ix := newTestIndex(&fakeDiscoverer{result: r})
	require.NoError(t, ix.EnsureLoaded())

	p, err := ix.Get("widget")
	require.NoError(t, err)
	p.Models[0] = "Mutated"

	all := ix.All()
	all[0].Models[0] = "Mutated"

	again, err := ix.Get("widget")
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget"}, again.Models)
	assert.Equal(t, "Widget", r.Packages[0].Models[0], "discovery result is not aliased")
}

func TestIndex_Snapshot(t *testing.T) {
	r := pkgs("a", "b")
	r.Skipped = []discovery.Skipped{{Path: "/repo/crud/broken", Reason: "malformed"}}
	ix := newTestIndex(&fakeDiscoverer{result: r})
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ix.now = func() time.Time { return fixed }

	require.NoError(t, ix.EnsureLoaded())
	snap := ix.Snapshot()

	assert.Equal(t, StatePopulated, snap.State)
	assert.Equal(t, fixed, snap.LoadedAt)
	assert.Equal(t, 2, snap.Packages)
	assert.Equal(t, 1, snap.Skipped)
	assert.Equal(t, "abc123", snap.Revision.Hash)
}

func TestIndex_RevisionErrorIsNotFatal(t *testing.T) {
	logger, buf := logging.NewTestLogger()
	ix := New("/repo", &fakeDiscoverer{result: pkgs("a")}, logger).
		WithRevisionFunc(func(string) (repository.Revision, error) {
			return repository.Revision{}, errors.New("corrupt packfile")
		})

	require.NoError(t, ix.EnsureLoaded())
	assert.False(t, ix.Snapshot().Revision.Known())
	assert.Contains(t, buf.String(), "Cannot resolve repository revision")
}

func TestIndex_ConcurrentEnsureLoaded(t *testing.T) {
	d := &fakeDiscoverer{result: pkgs("a", "b", "c")}
	ix := newTestIndex(d)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ix.EnsureLoaded())
			assert.Equal(t, 3, ix.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, d.calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "populated", StatePopulated.String())
	assert.Equal(t, "State(7)", State(7).String())
}
