//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/tails/internal/errors"
)

// openBackup opens a backup file without following a symlink in the last
// path component. ValidatePath already checked the directories.
func openBackup(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("path must not be a symlink")
		}
		return nil, backupOpenError(path, err)
	}
	return os.NewFile(uintptr(fd), path), nil
}
