package cli

import (
	"fmt"
	"io"
)

// MaxOutputSize is the maximum allowed size for a single write
const MaxOutputSize = 10 * 1024 * 1024 // 10MB

// writeOutput writes formatted output with error checking and a size limit
func writeOutput(w io.Writer, format string, args ...interface{}) error {
	output := fmt.Sprintf(format, args...)
	if len(output) > MaxOutputSize {
		return fmt.Errorf("output size %d exceeds maximum allowed size %d", len(output), MaxOutputSize)
	}

	if _, err := io.WriteString(w, output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// checkDeferredErr runs a deferred cleanup and reports its error through err
// when nothing failed before it.
func checkDeferredErr(e *env, err *error, op string, fn func() error) {
	cerr := fn()
	if cerr == nil {
		return
	}

	e.logger.Warn("deferred cleanup failed", "op", op, "error", cerr)
	if *err == nil {
		*err = fmt.Errorf("%s: %w", op, cerr)
	}
}
