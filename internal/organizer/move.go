package organizer

import (
	"fmt"
	"os"

	"otakurganizer/internal/fileutil"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/services"
)

type fileOps struct {
	rename func(oldpath, newpath string) error
	remove func(path string) error
	copy   func(src, dst string) error
}

func defaultFileOps() fileOps {
	return fileOps{
		rename: os.Rename,
		remove: os.Remove,
		copy:   fileutil.CopyFileVerified,
	}
}

// safeMove renames from to to, falling back to copy and delete when the two
// paths sit on different filesystems. If the source cannot be deleted after a
// successful copy, the copy is removed again and an error returned, so a
// failed move never leaves the file in both places.
func (m *Mover) safeMove(from, to string) error {
	err := m.ops.rename(from, to)
	if err == nil {
		return nil
	}
	if !fileutil.IsCrossDevice(err) {
		return services.Wrap(services.ErrTransient, "organize", "rename", from, err)
	}

	m.logger.Debug("rename crossed filesystems, copying",
		logging.String("from", from),
		logging.String("to", to),
	)
	if err := m.ops.copy(from, to); err != nil {
		return services.Wrap(services.ErrTransient, "organize", "copy across filesystems", from, err)
	}
	if err := m.ops.remove(from); err != nil {
		if cleanupErr := m.ops.remove(to); cleanupErr != nil {
			return services.Wrap(services.ErrTransient, "organize", "remove source after copy",
				fmt.Sprintf("%s (copy at %s could not be removed: %v)", from, to, cleanupErr), err)
		}
		return services.Wrap(services.ErrTransient, "organize", "remove source after copy", from, err)
	}
	return nil
}
