package scan

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logf writes one diagnostic line. Implementations must be safe for
// concurrent use by workers.
type Logf func(format string, args ...any)

func nopLogf(string, ...any) {}

func newLogf(verbose bool, w io.Writer) Logf {
	if !verbose {
		return nopLogf
	}
	if w == nil {
		w = os.Stderr
	}
	var mu sync.Mutex
	return func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format+"\n", args...)
	}
}
