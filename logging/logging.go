package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const maxLogSize = 2 * 1024 * 1024 // 2MB

// RotatingWriter appends to a log file and swaps in a fresh one when it
// grows past maxSize, keeping a single .1 backup.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

// New builds the application logger: level and format from config, output
// multi-written to stdout and a rotating file. The returned writer must be
// closed on shutdown. A file open failure degrades to stdout-only logging.
func New(level, path string, jsonFormat bool) (*logrus.Logger, *RotatingWriter) {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	rw, err := newRotatingWriter(path)
	if err != nil {
		logger.SetOutput(os.Stdout)
		logger.WithError(err).Warn("Could not open log file, logging to stdout only")
		return logger, nil
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, rw))
	return logger, rw
}

func newRotatingWriter(path string) (*RotatingWriter, error) {
	// Truncate oversized files from a previous run.
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		os.Truncate(path, 0)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    path,
		size:    size,
		maxSize: maxLogSize,
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

// rotate swaps in a fresh file. If the fresh file cannot be opened the
// backup is moved back and appended to, so a transient failure never
// leaves the writer on a closed handle.
func (w *RotatingWriter) rotate() {
	w.file.Close()
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		os.Rename(w.path+".1", w.path)
		f, err = os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			w.file = nil
			return
		}
		w.file = f
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
