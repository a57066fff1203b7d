package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	LogFileName  = "instant_desktop.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

var current *RotatingWriter

// Setup sends the standard logger to a size-rotated file in dir (10MB, max 3
// archives). When disabled, logs are discarded to keep the console clean.
// It returns the file path in use, or "" when file logging is off.
func Setup(enableFileLogging bool, dir string) string {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	closeCurrent()
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return ""
	}

	path := filepath.Join(dir, LogFileName)
	w, err := NewRotatingWriter(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return ""
	}
	log.SetOutput(w)
	current = w
	return path
}

func closeCurrent() {
	if current != nil {
		_ = current.Close()
		current = nil
	}
}

// SetupStderr is used for --verbose runs.
func SetupStderr() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	closeCurrent()
	log.SetOutput(os.Stderr)
}

// RotatingWriter appends to path and rotates it to path.1 .. path.3 once it
// would grow past maxSizeBytes.
type RotatingWriter struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	f       *os.File
}

func NewRotatingWriter(path string) (*RotatingWriter, error) {
	return newRotatingWriter(path, maxSizeBytes)
}

func newRotatingWriter(path string, maxSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	rotateIfNeeded(path, maxSize)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	return &RotatingWriter{path: path, maxSize: maxSize, f: f}, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size() > 0 && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		rotate(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

func rotateIfNeeded(path string, maxSize int64) {
	if st, err := os.Stat(path); err == nil && st.Size() > maxSize {
		rotate(path)
	}
}

// rotate shifts .1, .2, .3 (oldest discarded) and moves the current file to .1.
func rotate(path string) {
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }
