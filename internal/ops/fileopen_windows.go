//go:build windows

package ops

import (
	"os"
)

// openBackup opens a backup file. There is no O_NOFOLLOW here, so the
// symlink check in ValidatePath is all there is.
func openBackup(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, backupOpenError(path, err)
	}
	return f, nil
}
