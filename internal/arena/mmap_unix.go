//go:build unix

package arena

import "golang.org/x/sys/unix"

func reserve(size int) ([]byte, bool, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, false, err
	}
	return buf, true, nil
}

func release(buf []byte) error {
	return unix.Munmap(buf)
}
