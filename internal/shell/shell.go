package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mainbong/file_manager/internal/files"
	"github.com/mainbong/file_manager/internal/filesystem"
	"github.com/mainbong/file_manager/internal/logger"
	"github.com/mainbong/file_manager/internal/sysinfo"
)

// ErrExit ends the input loop
var ErrExit = errors.New("exit")

// Session is the state carried between commands
type Session struct {
	ID   string
	Name string
	Dir  string
}

// Options configures a Shell
type Options struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Files  *files.Manager
	System sysinfo.Provider

	// Name is the display name used in the greeting and farewell
	Name string
	// Prompt is printed before each line; empty disables it
	Prompt string
	// AsyncTransfers runs mv, compress and decompress in the background
	AsyncTransfers bool
}

// Shell reads commands line by line and dispatches them to handlers
type Shell struct {
	in       *bufio.Reader
	out      io.Writer
	errw     io.Writer
	files    *files.Manager
	fs       filesystem.FileSystem
	sys      sysinfo.Provider
	session  Session
	commands map[string]*Command
	order    []string
	prompt   string
	async    bool

	transfers errgroup.Group
	exitCode  atomic.Int32
}

// New creates a shell anchored at the file system's current directory
func New(opts Options) (*Shell, error) {
	if opts.Files == nil {
		opts.Files = files.NewManager()
	}
	if opts.System == nil {
		opts.System = sysinfo.NewOSProvider()
	}

	fs := opts.Files.FS()
	dir, err := fs.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	mu := &sync.Mutex{}
	s := &Shell{
		in:       bufio.NewReader(opts.In),
		out:      &lockedWriter{mu: mu, w: opts.Out},
		errw:     &lockedWriter{mu: mu, w: opts.Err},
		files:    opts.Files,
		fs:       fs,
		sys:      opts.System,
		session:  Session{ID: uuid.NewString(), Name: opts.Name, Dir: dir},
		commands: make(map[string]*Command),
		prompt:   opts.Prompt,
		async:    opts.AsyncTransfers,
	}

	s.registerCommands()
	return s, nil
}

// Session returns a copy of the current session state
func (s *Shell) Session() Session {
	return s.session
}

// ExitCode is the status the process should exit with
func (s *Shell) ExitCode() int {
	return int(s.exitCode.Load())
}

// Run prints the greeting and executes commands until .exit, end of input
// or ctx cancellation, then prints the farewell.
func (s *Shell) Run(ctx context.Context) error {
	logger.Info("session %s started in %s", s.session.ID, s.session.Dir)
	fmt.Fprintf(s.out, "As-salaam 'alykum, %s! Welcome to the File Manager\n", s.session.Name)

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go s.readLines(lines, readErr, done)

	for {
		s.showPrompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			s.close()
			return nil
		case line, ok := <-lines:
			if !ok {
				s.close()
				if err := <-readErr; err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			if err := s.Execute(ctx, line); errors.Is(err, ErrExit) {
				s.close()
				return nil
			}
		}
	}
}

// Execute parses one input line and runs the matching command. Command
// failures are reported to the user; only ErrExit is returned.
func (s *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]

	cmd, ok := s.commands[name]
	if !ok {
		logger.Warn("unknown command: %s", name)
		fmt.Fprintf(s.out, "Command %q not recognized. Please enter \".help\" for more info.\n", name)
		return nil
	}

	logger.Info("command: %s", strings.Join(fields, " "))
	err := cmd.Run(ctx, s, args)
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		s.report(err)
	}
	if cmd.EchoDir {
		color.New(color.FgYellow).Fprintf(s.out, "You are currently in %s\n", s.session.Dir)
	}
	return nil
}

// Resolve anchors path at the session directory
func (s *Shell) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.session.Dir, path)
}

func (s *Shell) readLines(lines chan<- string, readErr chan<- error, done <-chan struct{}) {
	defer close(lines)
	for {
		line, err := s.in.ReadString('\n')
		if line != "" {
			select {
			case lines <- strings.TrimRight(line, "\r\n"):
			case <-done:
				return
			}
		}
		if err != nil {
			readErr <- err
			return
		}
	}
}

func (s *Shell) showPrompt() {
	if s.prompt == "" {
		return
	}
	color.New(color.FgGreen).Fprint(s.out, s.prompt)
}

// close waits for background transfers and says goodbye
func (s *Shell) close() {
	_ = s.transfers.Wait()
	logger.Info("session %s closed", s.session.ID)
	fmt.Fprintf(s.out, "Thank you for using File Manager, %s, goodbye!\n", s.session.Name)
}

func (s *Shell) success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(s.out, format+"\n", args...)
}

func (s *Shell) report(err error) {
	logger.Error("%s", describe(err))
	color.New(color.FgRed).Fprintln(s.errw, err.Error())
}

// lockedWriter serialises writes from background transfers with the loop
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
