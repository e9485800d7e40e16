package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mainbong/file_manager/internal/config"
	"github.com/mainbong/file_manager/internal/files"
	"github.com/mainbong/file_manager/internal/logger"
	"github.com/mainbong/file_manager/internal/shell"
	"github.com/mainbong/file_manager/internal/sysinfo"
	"github.com/mainbong/file_manager/internal/terminal"
)

const version = "file-manager v0.1.0"

var (
	cfg      *config.Config
	devMode  bool
	username string
	exitCode int
)

var errMissingName = errors.New("missing display name: start with --username=<name> or username=<name>")

var rootCmd = &cobra.Command{
	Use:           "file-manager [username=<name>]",
	Short:         "Interactive file manager shell",
	Long:          "A line-based shell for browsing and manipulating files: listing, copying, moving, hashing and gzip compression.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			fmt.Println("Usage: file-manager config set [key] [value]")
			return
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			fmt.Printf("Failed to update config: %v\n", err)
			return
		}
		if err := cfg.Save(); err != nil {
			fmt.Printf("Failed to save config: %v\n", err)
			return
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cfg.Path())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logsCmd)

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	logsCmd.AddCommand(logsTailCmd)
	logsCmd.AddCommand(logsSearchCmd)
	logsCmd.AddCommand(logsFilterCmd)
	logsCmd.AddCommand(logsSummaryCmd)
	logsCmd.PersistentFlags().StringVar(&logFile, "file", "", "log file to read (default: latest session log)")
	logsTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 20, "number of existing lines to show")

	rootCmd.Flags().StringVar(&username, "username", "", "display name used in the greeting and farewell")
	rootCmd.Flags().BoolVar(&devMode, "dev", false, "mirror log output to stderr")
}

func main() {
	var err error

	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func runShell(cmd *cobra.Command, args []string) error {
	name, err := displayName(username, args)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogDir, logger.ParseLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	defer logger.Close()
	if devMode {
		logger.SetConsole(os.Stderr)
		fmt.Fprintf(os.Stderr, "[dev] logging to %s\n", logger.Path())
	}

	prompt := ""
	if terminal.HasTTY() {
		prompt = cfg.Prompt
	}
	if !terminal.IsTerminal(os.Stdout) {
		color.NoColor = true
	}

	system := sysinfo.NewOSProvider()
	if err := enterStartDir(system); err != nil {
		return err
	}
	runPreflightChecks()

	sh, err := shell.New(shell.Options{
		In:             os.Stdin,
		Out:            os.Stdout,
		Err:            os.Stderr,
		Files:          files.NewManager(),
		System:         system,
		Name:           name,
		Prompt:         prompt,
		AsyncTransfers: cfg.AsyncTransfers,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sh.Run(ctx); err != nil {
		logger.Error("shell stopped: %v", err)
		return err
	}
	exitCode = sh.ExitCode()
	return nil
}

// displayName takes the value of --username, or of the first key=value argument
func displayName(flagValue string, args []string) (string, error) {
	if name := strings.TrimSpace(flagValue); name != "" {
		return name, nil
	}
	if len(args) == 0 {
		return "", errMissingName
	}

	_, value, ok := strings.Cut(args[0], "=")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("%w (got %q)", errMissingName, args[0])
	}
	return value, nil
}

func enterStartDir(system sysinfo.Provider) error {
	home, err := system.HomeDir()
	if err != nil {
		logger.Warn("failed to resolve home directory: %v", err)
	}
	dir := cfg.ResolveStartDir(home)
	if dir == "" {
		return nil
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to enter start_dir %s: %w", dir, err)
	}
	logger.Info("start directory: %s", dir)
	return nil
}

func runPreflightChecks() {
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	if term == "" || term == "dumb" {
		color.NoColor = true
		logger.Warn("limited terminal: TERM=%q (colors disabled)", term)
	}

	if os.Getenv("LC_ALL") == "" && os.Getenv("LANG") == "" {
		logger.Warn("no locale set; ls ordering uses the root collation")
	}

	checkWritableDir(cfg.LogDir, "log_dir")
}

func checkWritableDir(path, label string) {
	if strings.TrimSpace(path) == "" {
		logger.Warn("%s is empty", label)
		return
	}
	testFile := filepath.Join(path, fmt.Sprintf(".writecheck-%d", time.Now().UnixNano()))
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		logger.Warn("%s is not writable: %s (%v)", label, path, err)
		return
	}
	_ = os.Remove(testFile)
}
