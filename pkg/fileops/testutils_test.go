package fileops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTempDirStructure creates a directory structure from a map. Keys ending
// in "/" are directories, everything else is a file with the given content.
func createTempDirStructure(t *testing.T, structure map[string]string) string {
	t.Helper()

	tempDir := t.TempDir()

	for path, content := range structure {
		fullPath := filepath.Join(tempDir, path)

		if strings.HasSuffix(path, "/") {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", path, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create parent dirs for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", path, err)
		}
	}

	return tempDir
}
