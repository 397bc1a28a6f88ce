//go:build !darwin

package screenshot

import "context"

// HasPermission reports whether the app may record the screen.
func HasPermission() bool { return false }

// RequestPermission prompts for screen recording permission.
func RequestPermission() {}

// Capture grabs the full screen silently and returns the PNG path.
func Capture(context.Context) (string, error) {
	return "", ErrUnsupported
}
