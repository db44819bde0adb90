package fileops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestListEntries_PackageDirs(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"widget/":      "",
		"billing/":     "",
		"_archive/":    "",
		".cache/":      "",
		"README.md":    "",
		"deep/nested/": "",
	})

	entries, err := ListEntries(root, PackageDirs)
	require.NoError(t, err)

	assert.Equal(t, []string{"billing", "deep", "widget"}, names(entries))
	for _, e := range entries {
		assert.True(t, e.IsDir)
		assert.Equal(t, filepath.Join(root, e.Name), e.Path)
	}
}

func TestListEntries_FilesOnly(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"Customer.php": "",
		"Order.php":    "",
		".gitkeep":     "",
		"Concerns/":    "",
	})

	entries, err := ListEntries(root, FilesOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer.php", "Order.php"}, names(entries))
}

func TestListEntries_AllKindsAndFilter(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"a.php": "",
		"b.txt": "",
		"c/":    "",
	})

	all, err := ListEntries(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.php", "b.txt", "c"}, names(all))

	php, err := ListEntries(root, &ListOptions{Files: true, Filter: func(n string) bool {
		return filepath.Ext(n) == ".php"
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.php"}, names(php))
}

func TestListEntries_MissingDirectory(t *testing.T) {
	_, err := ListEntries(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestListEntries_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	root := createTempDirStructure(t, map[string]string{
		"real/": "",
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")))

	entries, err := ListEntries(root, PackageDirs)
	require.NoError(t, err)
	assert.Equal(t, []string{"linked", "real"}, names(entries))
}

func TestEntryStem(t *testing.T) {
	assert.Equal(t, "Customer", Entry{Name: "Customer.php"}.Stem())
	assert.Equal(t, "archive.tar", Entry{Name: "archive.tar.gz"}.Stem())
	assert.Equal(t, "Makefile", Entry{Name: "Makefile"}.Stem())
}

func TestStems(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"Models/Customer.php": "",
		"Models/Order.php":    "",
		"Models/README.md":    "",
	})

	models := filepath.Join(root, "Models")
	assert.Equal(t, []string{"Customer", "Order", "README"}, Stems(models, nil))
	assert.Equal(t, []string{"Customer", "Order"}, Stems(models, FilesWithExt(".php")))
	assert.Nil(t, Stems(filepath.Join(root, "Traits"), nil))
}
