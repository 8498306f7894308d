package interp

import (
	"io"
	"os"
	"sync"
)

// lockedWriter serializes writes to an output shared by the shell, forked
// built-ins and the goroutines copying the output of running programs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// syncWriter guards w with a lock unless it's a file. Programs write to files
// directly, everything else is written from goroutines.
func syncWriter(w io.Writer) io.Writer {
	switch w.(type) {
	case nil, *os.File, *lockedWriter:
		return w
	default:
		return &lockedWriter{w: w}
	}
}
