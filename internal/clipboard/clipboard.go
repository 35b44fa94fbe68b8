// Package clipboard copies passwords to the system clipboard and clears them
// again after a timeout.
package clipboard

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

var (
	writeAll = clipboard.WriteAll
	readAll  = clipboard.ReadAll
)

// CopyWithTimeout copies text to the clipboard and clears it after timeout,
// unless the clipboard was changed in the meantime. A zero timeout never
// clears. The returned channel is closed once the clear has run.
func CopyWithTimeout(text string, timeout time.Duration) (<-chan struct{}, error) {
	if err := writeAll(text); err != nil {
		return nil, fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	done := make(chan struct{})
	if timeout <= 0 {
		close(done)
		return done, nil
	}

	go func() {
		defer close(done)
		time.Sleep(timeout)

		current, err := readAll()
		if err == nil && current == text {
			_ = writeAll("")
		}
	}()

	return done, nil
}

// IsAvailable returns true if clipboard functionality is available
func IsAvailable() bool {
	if clipboard.Unsupported {
		return false
	}
	_, err := readAll()
	return err == nil
}

// Clear clears the clipboard
func Clear() error {
	return writeAll("")
}
