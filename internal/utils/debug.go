package utils

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

var (
	debugMu     sync.Mutex
	debugFile   *os.File
	debugLogger *slog.Logger
	logsDir     atomic.Value // string
	verbose     atomic.Bool
)

// ConfigureDebug sets the directory debug log files are created in.
func ConfigureDebug(dir string) {
	logsDir.Store(dir)
}

// SetVerbose enables or disables verbose logging
func SetVerbose(enabled bool) {
	verbose.Store(enabled)
}

// IsVerbose returns true if verbose logging is enabled
func IsVerbose() bool {
	return verbose.Load()
}

// SetDebugOutput routes debug records to w instead of a log file.
// Passing nil restores the lazily created file.
func SetDebugOutput(w io.Writer) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if w == nil {
		debugLogger = nil
		return
	}
	debugLogger = newDebugLogger(w)
}

func newDebugLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func currentLogsDir() string {
	if v, ok := logsDir.Load().(string); ok {
		return v
	}
	return ""
}

// logger returns the debug sink, opening debug-<timestamp>.log on first use.
func logger() *slog.Logger {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugLogger != nil {
		return debugLogger
	}
	dir := currentLogsDir()
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil
	}
	name := fmt.Sprintf("debug-%s.log", time.Now().Format("20060102-150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil
	}
	debugFile = f
	debugLogger = newDebugLogger(f)
	return debugLogger
}

// Debug records a formatted message when verbose logging is on.
func Debug(format string, args ...any) {
	if !IsVerbose() {
		return
	}
	if l := logger(); l != nil {
		l.Debug(fmt.Sprintf(format, args...))
	}
}

// CloseDebug flushes and closes the debug log file, if one was opened.
func CloseDebug() {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugFile != nil {
		_ = debugFile.Close()
		debugFile = nil
		debugLogger = nil
	}
}

// CleanupLogs deletes all but the newest keep debug logs in the configured
// directory. A negative keep disables pruning.
func CleanupLogs(keep int) {
	dir := currentLogsDir()
	if keep < 0 || dir == "" {
		return
	}
	logs, err := filepath.Glob(filepath.Join(dir, "debug-*.log"))
	if err != nil || len(logs) <= keep {
		return
	}
	// Timestamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(logs)))
	for _, path := range logs[keep:] {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			Debug("remove old log %s: %v", path, err)
		}
	}
}

// RestyLogger adapts Debug to the logger interface expected by the HTTP client.
type RestyLogger struct{}

func (RestyLogger) Errorf(format string, v ...interface{}) { Debug("http error: "+format, v...) }
func (RestyLogger) Warnf(format string, v ...interface{})  { Debug("http warn: "+format, v...) }
func (RestyLogger) Debugf(format string, v ...interface{}) { Debug("http: "+format, v...) }
