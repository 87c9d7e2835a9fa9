package mirror

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// NeedsUpdate reports whether target is absent or strictly older than
// source. Equal modification times count as up to date.
func NeedsUpdate(sourcePath string, targetPath string) (bool, error) {
	targetInfo, err := os.Stat(targetPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat target %s", targetPath)
	}
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false, errors.Wrapf(err, "stat source %s", sourcePath)
	}
	return sourceInfo.ModTime().After(targetInfo.ModTime()), nil
}
