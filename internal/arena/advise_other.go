//go:build !linux

package arena

func adviseLarge([]byte) {}
