// Package logging provides the process-wide leveled logger.
//
// All components log through the package-level convenience functions.
// Messages go to a log file (truncated on each startup so the file only
// ever holds the current session) and are echoed to the console.
//
// Levels:
//   - DEBUG: detailed operation info (pixel counts, coordinates, timing)
//   - INFO: important events (startup, bot transitions, anchors resolved)
//   - WARN: non-critical issues (settings load failure, port in use)
//   - ERROR: serious problems (anchor not found, worker panic)
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger writes timestamped, leveled messages to a file and to stdout.
// Thread safety is ensured via mutex so the UI goroutine, the bot worker
// and the hotkey listener can log concurrently.
type Logger struct {
	file   *os.File
	logger *log.Logger
	mu     sync.Mutex
}

var global *Logger

// Init initializes the global logger to write to the given path.
// The log file is truncated (cleared) on each startup.
func Init(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	global = &Logger{
		file:   file,
		logger: log.New(file, "", log.LstdFlags|log.Lmicroseconds),
	}

	global.printf("INFO", "Logger initialized (log file cleared)")
	return nil
}

// Close closes the log file.
func Close() {
	if global != nil && global.file != nil {
		global.printf("INFO", "Logger closing")
		global.file.Close()
	}
}

func (l *Logger) printf(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf("["+level+"] "+format, v...)
	l.logger.Print(msg)
	fmt.Println(msg)
}

// Debug logs debug level messages.
func Debug(format string, v ...interface{}) {
	if global != nil {
		global.printf("DEBUG", format, v...)
	}
}

// Info logs info level messages.
func Info(format string, v ...interface{}) {
	if global != nil {
		global.printf("INFO", format, v...)
	}
}

// Warn logs warning level messages.
func Warn(format string, v ...interface{}) {
	if global != nil {
		global.printf("WARN", format, v...)
	}
}

// Error logs error level messages.
func Error(format string, v ...interface{}) {
	if global != nil {
		global.printf("ERROR", format, v...)
	}
}
