package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrFileTooLarge is returned when a file exceeds the read limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ValidateFileSizeLimit checks that filePath is a regular file no larger than
// maxSize bytes.
//
// Usage example:
//
//	// Limit files to 2MB
//	if err := fileops.ValidateFileSizeLimit("/path/to/Model.php", 2*1024*1024); err != nil {
//	    return fmt.Errorf("file too large: %w", err)
//	}
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s: %w", filepath.Base(filePath), err)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit %d bytes", ErrFileTooLarge, fileInfo.Size(), maxSize)
	}

	return nil
}

// ReadTextFile reads a file after checking it against maxSize.
func ReadTextFile(path string, maxSize int64) (string, error) {
	if err := ValidateFileSizeLimit(path, maxSize); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// ReadTextOrEmpty is ReadTextFile with every failure mapped to "", for probes
// where an unreadable file is the same as an absent one.
func ReadTextOrEmpty(path string, maxSize int64) string {
	text, err := ReadTextFile(path, maxSize)
	if err != nil {
		return ""
	}
	return text
}
