package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogLevel represents the log level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// MaxFiles is how many session log files are kept in the log directory
const MaxFiles = 20

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger is the main logger struct
type Logger struct {
	level         LogLevel
	fileLogger    *log.Logger
	consoleLogger *log.Logger // nil unless SetConsole was called
	file          *os.File
	logDir        string
	path          string
}

var defaultLogger *Logger

// Init initializes the default logger
func Init(logDir string, level LogLevel) error {
	logger, err := NewLogger(logDir, level)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// NewLogger creates a new logger instance
func NewLogger(logDir string, level LogLevel) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// One file per session; the timestamp keeps names in chronological order
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFile := filepath.Join(logDir, fmt.Sprintf("file-manager_%s.log", timestamp))

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileLogger := log.New(file, "", log.LstdFlags)

	// Also create a symlink to latest.log for easy access
	latestLog := filepath.Join(logDir, "latest.log")
	os.Remove(latestLog) // Remove old symlink if exists
	os.Symlink(filepath.Base(logFile), latestLog)

	prune(logDir, MaxFiles)

	return &Logger{
		level:      level,
		fileLogger: fileLogger,
		file:       file,
		logDir:     logDir,
		path:       logFile,
	}, nil
}

// prune removes the oldest session logs so that at most keep remain
func prune(logDir string, keep int) {
	files, err := filepath.Glob(filepath.Join(logDir, "file-manager_*.log"))
	if err != nil || len(files) <= keep {
		return
	}
	sort.Strings(files)
	for _, old := range files[:len(files)-keep] {
		os.Remove(old)
	}
}

// SetConsole mirrors every logged line to w. Passing nil turns mirroring off.
func (l *Logger) SetConsole(w io.Writer) {
	if w == nil {
		l.consoleLogger = nil
		return
	}
	l.consoleLogger = log.New(w, "", 0)
}

// ParseLevel maps a config value to a LogLevel, defaulting to INFO
func ParseLevel(name string) LogLevel {
	for level, levelName := range levelNames {
		if strings.EqualFold(levelName, name) {
			return level
		}
	}
	return INFO
}

// log writes a log message
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	levelName := level.String()
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s: %s", timestamp, levelName, message)

	l.fileLogger.Println(logMessage)
	if l.consoleLogger != nil {
		l.consoleLogger.Println(logMessage)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// GetLogDir returns the log directory
func (l *Logger) GetLogDir() string {
	return l.logDir
}

// Path returns the file this logger writes to
func (l *Logger) Path() string {
	return l.path
}

// Package-level functions for default logger

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debug(format, args...)
	}
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Info(format, args...)
	}
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warn(format, args...)
	}
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Error(format, args...)
	}
}

// SetConsole mirrors the default logger to w
func SetConsole(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.SetConsole(w)
	}
}

// Path returns the default logger's file, or "" before Init
func Path() string {
	if defaultLogger != nil {
		return defaultLogger.Path()
	}
	return ""
}

// Close closes the default logger
func Close() error {
	if defaultLogger != nil {
		return defaultLogger.Close()
	}
	return nil
}
