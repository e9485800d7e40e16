package logs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const sessionLog = `2025/01/01 10:00:00 [2025-01-01 10:00:00] INFO: session 6f1c started in /home/tester
2025/01/01 10:00:01 [2025-01-01 10:00:01] INFO: command: ls
2025/01/01 10:00:02 [2025-01-01 10:00:02] WARN: unknown command: foobar
2025/01/01 10:00:03 [2025-01-01 10:00:03] INFO: command: rn a.txt b.txt
2025/01/01 10:00:03 [2025-01-01 10:00:03] ERROR: File already exist. (cause: file already exists)
2025/01/01 10:00:04 [2025-01-01 10:00:04] DEBUG: copied 2 files
2025/01/01 10:00:05 [2025-01-01 10:00:05] INFO: session 6f1c closed
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file-manager_2025-01-01_10-00-00.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func newTestViewer(t *testing.T, path string) *Viewer {
	t.Helper()
	viewer, err := NewViewer(path)
	if err != nil {
		t.Fatalf("NewViewer() failed: %v", err)
	}
	t.Cleanup(func() { viewer.Close() })
	return viewer
}

func TestParse(t *testing.T) {
	rec := Parse(3, "2025/01/01 10:00:01 [2025-01-01 10:00:01] INFO: command: cd ..")
	if rec.Line != 3 || rec.Level != "INFO" || rec.Message != "command: cd .." {
		t.Errorf("unexpected record: %+v", rec)
	}

	rec = Parse(1, "panic: something else")
	if rec.Level != "" || rec.Message != "" {
		t.Errorf("expected unparsed line, got %+v", rec)
	}
}

func TestSearch(t *testing.T) {
	viewer := newTestViewer(t, writeLog(t, sessionLog))

	matches, err := viewer.Search(`command: (ls|rn)`)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Line != 2 || matches[1].Line != 4 {
		t.Errorf("unexpected line numbers: %d, %d", matches[0].Line, matches[1].Line)
	}
}

func TestSearch_InvalidPattern(t *testing.T) {
	viewer := newTestViewer(t, writeLog(t, sessionLog))

	if _, err := viewer.Search("[invalid regex"); err == nil {
		t.Error("Expected error for invalid regex pattern, got nil")
	}
}

func TestFilter(t *testing.T) {
	viewer := newTestViewer(t, writeLog(t, sessionLog))

	tests := []struct {
		level string
		want  int
	}{
		{level: "ERROR", want: 1},
		{level: "warn", want: 2},
		{level: "INFO", want: 6},
		{level: "DEBUG", want: 7},
	}

	for _, tt := range tests {
		matches, err := viewer.Filter(tt.level)
		if err != nil {
			t.Fatalf("Filter(%s) failed: %v", tt.level, err)
		}
		if len(matches) != tt.want {
			t.Errorf("Filter(%s): expected %d records, got %d", tt.level, tt.want, len(matches))
		}
	}

	if _, err := viewer.Filter("TRACE"); err == nil {
		t.Error("Expected error for unknown level, got nil")
	}
}

func TestSummarize(t *testing.T) {
	viewer := newTestViewer(t, writeLog(t, sessionLog+"stray line\n"))

	summary, err := viewer.Summarize()
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}

	if summary.Lines != 8 {
		t.Errorf("Expected 8 lines, got %d", summary.Lines)
	}
	if summary.Sessions != 1 {
		t.Errorf("Expected 1 session, got %d", summary.Sessions)
	}
	if summary.Commands != 2 {
		t.Errorf("Expected 2 commands, got %d", summary.Commands)
	}
	if summary.Unknown != 1 {
		t.Errorf("Expected 1 unknown command, got %d", summary.Unknown)
	}
	if summary.ByLevel["INFO"] != 4 || summary.ByLevel["ERROR"] != 1 || summary.ByLevel["WARN"] != 1 || summary.ByLevel["DEBUG"] != 1 {
		t.Errorf("unexpected level counts: %v", summary.ByLevel)
	}
}

func TestFileNotFound(t *testing.T) {
	viewer := newTestViewer(t, filepath.Join(t.TempDir(), "nonexistent.log"))

	if _, err := viewer.Search("x"); err == nil {
		t.Error("Search: expected error for nonexistent file")
	}
	if _, err := viewer.Filter("INFO"); err == nil {
		t.Error("Filter: expected error for nonexistent file")
	}
	if _, err := viewer.Summarize(); err == nil {
		t.Error("Summarize: expected error for nonexistent file")
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"file-manager_2025-01-01_10-00-00.log", "file-manager_2025-03-01_09-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	got, err := Latest(dir)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if filepath.Base(got) != "file-manager_2025-03-01_09-00-00.log" {
		t.Errorf("expected newest log, got %s", got)
	}

	if err := os.Symlink("file-manager_2025-01-01_10-00-00.log", filepath.Join(dir, "latest.log")); err == nil {
		got, err = Latest(dir)
		if err != nil {
			t.Fatalf("Latest() failed: %v", err)
		}
		if filepath.Base(got) != "file-manager_2025-01-01_10-00-00.log" {
			t.Errorf("expected latest.log target, got %s", got)
		}
	}

	if _, err := Latest(t.TempDir()); err == nil {
		t.Error("expected error for empty log dir")
	}
}

func TestFollow_BacklogAndAppends(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\n")
	viewer := newTestViewer(t, path)

	var (
		mu    sync.Mutex
		lines []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- viewer.Follow(ctx, 2, func(line string) {
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		})
	}()

	waitFor := func(n int) []string {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			mu.Lock()
			got := append([]string(nil), lines...)
			mu.Unlock()
			if len(got) >= n {
				return got
			}
			time.Sleep(10 * time.Millisecond)
		}
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), lines...)
	}

	if got := waitFor(2); strings.Join(got, ",") != "two,three" {
		t.Fatalf("expected backlog two,three, got %v", got)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := file.WriteString("four\n"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	file.Close()

	if got := waitFor(3); strings.Join(got, ",") != "two,three,four" {
		t.Errorf("expected appended line, got %v", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Follow() did not return after context cancellation")
	}
}
