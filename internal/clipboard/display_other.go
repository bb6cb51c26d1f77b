//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

func needsDisplay() bool { return false }
