package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to a file renamed aside before it is overwritten.
const BackupSuffix = ".bak"

// BackupFile renames an existing file at path to path+BackupSuffix. It returns
// the backup path, or "" when there was nothing to back up.
func BackupFile(path string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	backup := path + BackupSuffix
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	return backup, nil
}

// WriteFileWithBackup renames any existing file aside, then writes data. A
// failed backup aborts the write and leaves the original untouched.
func WriteFileWithBackup(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if _, err := BackupFile(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
