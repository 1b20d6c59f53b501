package arena

import "golang.org/x/sys/unix"

// adviseLarge asks for transparent huge pages; failure only costs TLB misses.
func adviseLarge(buf []byte) {
	_ = unix.Madvise(buf, unix.MADV_HUGEPAGE)
}
