// Package screenshot captures the screen behind the overlay.
package screenshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrUnsupported is returned on platforms without a capture implementation.
var ErrUnsupported = errors.New("screenshot: not supported on this platform")

// ErrPermission is returned when the OS denies screen recording.
var ErrPermission = errors.New("screenshot: screen recording permission required")

// tempPath returns a fresh file path for a capture taken at t.
func tempPath(t time.Time) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("ghostframe_screenshot_%d.png", t.UnixNano()))
}
