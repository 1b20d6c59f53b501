package rename

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// exchange swaps a and b with renameat2(RENAME_EXCHANGE), falling back to
// the temporary-name sequence when the kernel or filesystem lacks it.
func exchange(a, b string) error {
	err := unix.Renameat2(unix.AT_FDCWD, a, unix.AT_FDCWD, b, unix.RENAME_EXCHANGE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EINVAL), errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EOPNOTSUPP):
		return emulateExchange(a, b)
	default:
		return &os.LinkError{Op: "exchange", Old: a, New: b, Err: err}
	}
}
