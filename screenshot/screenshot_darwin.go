package screenshot

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Foundation
#import <CoreGraphics/CoreGraphics.h>
#import <Foundation/Foundation.h>

bool hasScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        return CGPreflightScreenCaptureAccess();
    }
    return true;
}

void requestScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        CGRequestScreenCaptureAccess();
    }
}
*/
import "C"
import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// HasPermission reports whether the app may record the screen.
func HasPermission() bool {
	return bool(C.hasScreenRecordingPermission())
}

// RequestPermission prompts for screen recording permission.
func RequestPermission() {
	C.requestScreenRecordingPermission()
}

// Capture grabs the full screen silently and returns the PNG path.
// The caller owns the file.
func Capture(ctx context.Context) (string, error) {
	if !HasPermission() {
		RequestPermission()
		return "", ErrPermission
	}

	path := tempPath(time.Now())
	// -x: no sound, -t: format
	cmd := exec.CommandContext(ctx, "screencapture", "-x", "-t", "png", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("screencapture: %w: %s", err, out)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("screenshot not saved: %w", err)
	}
	return path, nil
}
