package logs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Levels in ascending severity, matching the logger's level names
var Levels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

var (
	levelPattern   = regexp.MustCompile(`\] (DEBUG|INFO|WARN|ERROR): (.*)$`)
	sessionPattern = regexp.MustCompile(`^session \S+ started`)
)

// Record is one parsed log line
type Record struct {
	Line    int
	Level   string
	Message string
	Raw     string
}

// Summary counts what happened in a session log
type Summary struct {
	Lines    int
	ByLevel  map[string]int
	Sessions int
	Commands int
	Unknown  int
}

// Viewer reads and follows a file-manager log file
type Viewer struct {
	filePath    string
	watcher     *fsnotify.Watcher
	lastOffset  int64
	lastPartial string
}

// Latest returns the most recent log file in logDir, preferring the
// latest.log link the logger maintains.
func Latest(logDir string) (string, error) {
	if target, err := filepath.EvalSymlinks(filepath.Join(logDir, "latest.log")); err == nil {
		return target, nil
	}

	matches, err := filepath.Glob(filepath.Join(logDir, "file-manager_*.log"))
	if err != nil {
		return "", fmt.Errorf("failed to list log files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no log files in %s", logDir)
	}
	// timestamps in the names sort chronologically
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// NewViewer creates a viewer for filePath
func NewViewer(filePath string) (*Viewer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Viewer{
		filePath: filePath,
		watcher:  watcher,
	}, nil
}

// Path returns the file being viewed
func (v *Viewer) Path() string {
	return v.filePath
}

// Follow prints the last backlog lines and then every line appended until
// ctx is done.
func (v *Viewer) Follow(ctx context.Context, backlog int, onLine func(string)) error {
	if err := v.watcher.Add(v.filePath); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	if err := v.readLastLines(backlog, onLine); err != nil {
		return fmt.Errorf("failed to read last lines: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-v.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				if err := v.readNewLines(onLine); err != nil {
					return fmt.Errorf("failed to read new lines: %w", err)
				}
			}
		case err, ok := <-v.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// Search returns the records whose line matches pattern
func (v *Viewer) Search(pattern string) ([]Record, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	var matches []Record
	err = v.scan(func(rec Record) {
		if re.MatchString(rec.Raw) {
			matches = append(matches, rec)
		}
	})
	return matches, err
}

// Filter returns the records at or above level
func (v *Viewer) Filter(level string) ([]Record, error) {
	floor := severity(level)
	if floor < 0 {
		return nil, fmt.Errorf("unknown level: %s", level)
	}

	var matches []Record
	err := v.scan(func(rec Record) {
		if severity(rec.Level) >= floor {
			matches = append(matches, rec)
		}
	})
	return matches, err
}

// Summarize counts lines per level, sessions and dispatched commands
func (v *Viewer) Summarize() (*Summary, error) {
	summary := &Summary{ByLevel: make(map[string]int, len(Levels))}
	err := v.scan(func(rec Record) {
		summary.Lines++
		if rec.Level == "" {
			return
		}
		summary.ByLevel[rec.Level]++
		switch {
		case sessionPattern.MatchString(rec.Message):
			summary.Sessions++
		case strings.HasPrefix(rec.Message, "command: "):
			summary.Commands++
		case strings.HasPrefix(rec.Message, "unknown command: "):
			summary.Unknown++
		}
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Close closes the viewer
func (v *Viewer) Close() error {
	if v.watcher != nil {
		return v.watcher.Close()
	}
	return nil
}

// Parse splits a raw log line into level and message. Lines that were not
// written by the logger keep an empty level.
func Parse(lineNum int, line string) Record {
	rec := Record{Line: lineNum, Raw: line}
	if m := levelPattern.FindStringSubmatch(line); m != nil {
		rec.Level = m[1]
		rec.Message = m[2]
	}
	return rec
}

func severity(level string) int {
	for i, name := range Levels {
		if strings.EqualFold(name, level) {
			return i
		}
	}
	return -1
}

func (v *Viewer) scan(fn func(Record)) error {
	file, err := os.Open(v.filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 1
	for scanner.Scan() {
		fn(Parse(lineNum, scanner.Text()))
		lineNum++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan file: %w", err)
	}
	return nil
}

// readLastLines emits the last n lines and records the offset to follow from
func (v *Viewer) readLastLines(n int, onLine func(string)) error {
	file, err := os.Open(v.filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to read offset: %w", err)
	}
	v.lastOffset = offset
	v.lastPartial = ""

	start := len(lines) - n
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:] {
		onLine(line)
	}
	return nil
}

// readNewLines emits the complete lines appended since the last read
func (v *Viewer) readNewLines(onLine func(string)) error {
	file, err := os.Open(v.filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	// truncated or replaced
	if stat.Size() < v.lastOffset {
		v.lastOffset = 0
		v.lastPartial = ""
	}

	if _, err := file.Seek(v.lastOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek file: %w", err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read new data: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	v.lastOffset += int64(len(data))

	text := v.lastPartial + string(data)
	last := strings.LastIndex(text, "\n")
	if last == -1 {
		v.lastPartial = text
		return nil
	}
	v.lastPartial = text[last+1:]

	for _, line := range strings.Split(text[:last], "\n") {
		onLine(line)
	}
	return nil
}
