//go:build !linux

package rename

func exchange(a, b string) error {
	return emulateExchange(a, b)
}
