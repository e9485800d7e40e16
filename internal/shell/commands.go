package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/mainbong/file_manager/internal/files"
	"github.com/mainbong/file_manager/internal/logger"
	"github.com/mainbong/file_manager/internal/terminal"
)

// Handler runs one command against the shell
type Handler func(ctx context.Context, s *Shell, args []string) error

// Command is a registry entry
type Command struct {
	Name        string
	Description string
	Run         Handler
	// EchoDir prints the working directory after the handler returns
	EchoDir bool
}

func (s *Shell) register(cmd *Command) {
	s.commands[cmd.Name] = cmd
	s.order = append(s.order, cmd.Name)
}

func (s *Shell) registerCommands() {
	s.register(&Command{Name: "ls", Description: "To see the current directory files", Run: runList})
	s.register(&Command{Name: "cd", Description: "Enter the folders", Run: runChangeDir, EchoDir: true})
	s.register(&Command{Name: "cat", Description: "For reading the files", Run: runCat})
	s.register(&Command{Name: "add", Description: "For creating files", Run: runAdd})
	s.register(&Command{Name: "rm", Description: "For deleting files", Run: runRemove})
	s.register(&Command{Name: "rn", Description: "For renaming the files", Run: runRename})
	s.register(&Command{Name: "cp", Description: "For copying the files", Run: runCopy})
	s.register(&Command{Name: "mv", Description: "For moving the files", Run: runMove})
	s.register(&Command{Name: "hash", Description: "For hashing the files", Run: runHash})
	s.register(&Command{Name: "compress", Description: "compress the file", Run: runCompress, EchoDir: true})
	s.register(&Command{Name: "decompress", Description: "decompress the file", Run: runDecompress, EchoDir: true})
	s.register(&Command{Name: ".exit", Description: "exit the program", Run: runExit})
	s.register(&Command{Name: "os", Description: "Operating system info", Run: runOS})
	s.register(&Command{Name: ".help", Description: "Show this table", Run: runHelp})
}

func runList(ctx context.Context, s *Shell, args []string) error {
	entries, err := s.files.List(s.session.Dir)
	if err != nil {
		return fail(err, "Unable to read directory: %v", err)
	}

	table := terminal.NewTable("Type", "Name")
	for _, e := range entries {
		table.AddRow(string(e.Type), e.Name)
	}
	return table.Render(s.out)
}

func runChangeDir(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return missingArg("directory")
	}

	target := s.Resolve(args[0])
	if err := s.fs.Chdir(target); err != nil {
		return fail(err, "Operation failed %v", err)
	}
	// the process directory is authoritative; through a symlink it is the real path
	dir, err := s.fs.Getwd()
	if err != nil {
		logger.Warn("failed to read working directory after cd: %v", err)
		dir = target
	}
	s.session.Dir = dir
	return nil
}

func runCat(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return missingArg("file")
	}

	path := s.Resolve(args[0])
	fmt.Fprintln(s.out, path)
	content, err := s.files.ReadFile(path)
	if err != nil {
		return fail(err, "FS operation failed: %v", err)
	}
	fmt.Fprintln(s.out, content)
	return nil
}

// runAdd always leaves an empty file behind. An entry that was already there
// is reported and then overwritten.
func runAdd(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return missingArg("file")
	}

	path := s.Resolve(args[0])
	existed, err := s.files.Exists(path)
	switch {
	case err != nil:
		s.report(fail(err, "FS operation failed: %v", err))
	case existed:
		s.report(errorf("FS operation failed: %s already exists", path))
	}

	if err := s.files.Touch(path); err != nil {
		return fail(err, "FS operation failed: %v", err)
	}
	s.success("File created!")
	return nil
}

func runRemove(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return missingArg("file")
	}

	if err := s.files.Remove(s.Resolve(args[0])); err != nil {
		return fail(err, "Smth went wrong, pls check and try again.")
	}
	s.success("File deleted successfully!")
	return nil
}

func runRename(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return missingArg("source or destination")
	}

	err := s.files.Rename(s.Resolve(args[0]), s.Resolve(args[1]))
	switch {
	case errors.Is(err, files.ErrNotExist):
		return fail(err, "File not exist!")
	case errors.Is(err, files.ErrExist):
		return fail(err, "File already exist.")
	case err != nil:
		return fail(err, "Operation failed %v", err)
	}
	s.success("File renamed!")
	return nil
}

func runCopy(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return missingArg("source or destination directory")
	}

	copied, err := s.files.CopyDir(ctx, s.Resolve(args[0]), s.Resolve(args[1]))
	if err != nil {
		return fail(err, "FS operation failed %v", err)
	}
	logger.Debug("copied %d files", copied)
	s.success("Files copied successfully!")
	return nil
}

func runMove(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return missingArg("source or destination")
	}

	src, dst := s.Resolve(args[0]), s.Resolve(args[1])
	return s.transfer(ctx, "mv", func(ctx context.Context) error {
		return s.files.Move(ctx, src, dst)
	}, "Done!", func(err error) error {
		return fail(err, "Operation failed %v", err)
	})
}

func runHash(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return missingArg("file")
	}

	sum, err := s.files.Hash(s.Resolve(args[0]))
	if err != nil {
		return fail(err, "Smth went wrong pls check and try again.")
	}
	fmt.Fprintln(s.out, sum)
	return nil
}

func runCompress(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return missingArg("source or destination")
	}

	src, dst := s.Resolve(args[0]), s.Resolve(args[1])
	return s.transfer(ctx, "compress", func(ctx context.Context) error {
		return s.files.Compress(ctx, src, dst)
	}, "File compressed successfully!", func(err error) error {
		s.exitCode.Store(1)
		return fail(err, "An error occured: %v", err)
	})
}

func runDecompress(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return missingArg("source or destination")
	}

	src, dst := s.Resolve(args[0]), s.Resolve(args[1])
	return s.transfer(ctx, "decompress", func(ctx context.Context) error {
		return s.files.Decompress(ctx, src, dst)
	}, "File successfully decompressed!", func(err error) error {
		return fail(err, "Smth went wrong %v", err)
	})
}

// transfer runs a streaming operation. In the default mode the handler waits
// and the success message follows completion. With async transfers the
// outcome is reported by the background goroutine; close waits for it.
func (s *Shell) transfer(ctx context.Context, kind string, run func(context.Context) error, done string, failed func(error) error) error {
	if !s.async {
		if err := run(ctx); err != nil {
			return failed(err)
		}
		s.success("%s", done)
		return nil
	}

	id := uuid.NewString()
	logger.Info("transfer %s (%s) started", id, kind)
	s.transfers.Go(func() error {
		if err := run(ctx); err != nil {
			logger.Error("transfer %s (%s) failed: %v", id, kind, err)
			s.report(failed(err))
			return nil
		}
		logger.Info("transfer %s (%s) finished", id, kind)
		s.success("%s", done)
		return nil
	})
	return nil
}

func runOS(ctx context.Context, s *Shell, args []string) error {
	flag := "undefined"
	if len(args) > 0 {
		flag = args[0]
	}

	switch flag {
	case "--EOL":
		fmt.Fprintf(s.out, "The default End-Of-Line for this system is: %s\n", strconv.Quote(s.sys.EOL()))
	case "--cpus":
		cpus, err := s.sys.CPUs()
		if err != nil {
			return fail(err, "Operation failed %v", err)
		}
		fmt.Fprintf(s.out, "This system has %d CPUs:\n", len(cpus))
		for i, cpu := range cpus {
			fmt.Fprintf(s.out, "  CPU %d:\n", i+1)
			fmt.Fprintf(s.out, "    Model: %s\n", cpu.Model)
			fmt.Fprintf(s.out, "    Speed: %g GHz\n", cpu.GHz())
		}
	case "--homedir":
		home, err := s.sys.HomeDir()
		if err != nil {
			return fail(err, "Operation failed %v", err)
		}
		fmt.Fprintf(s.out, "The home directory for the current user is: %s\n", home)
	case "--username":
		name, err := s.sys.Username()
		if err != nil {
			return fail(err, "Operation failed %v", err)
		}
		fmt.Fprintf(s.out, "The current system user name is: %s\n", name)
	case "--architecture":
		fmt.Fprintf(s.out, "This binary is compiled for %s architecture\n", s.sys.Arch())
	default:
		fmt.Fprintf(s.out, "Invalid command: %s. Available commands are \"--EOL\", \"--cpus\", \"--homedir\", \"--username\", and \"--architecture\".\n", flag)
	}
	return nil
}

func runHelp(ctx context.Context, s *Shell, args []string) error {
	table := terminal.NewTable("Command", "Description")
	for _, name := range s.order {
		table.AddRow(name, s.commands[name].Description)
	}
	return table.Render(s.out)
}

func runExit(ctx context.Context, s *Shell, args []string) error {
	return ErrExit
}
