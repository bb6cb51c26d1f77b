//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

// X11 and Wayland clipboards need a display connection.
func needsDisplay() bool { return true }
