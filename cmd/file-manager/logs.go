package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mainbong/file_manager/internal/logs"
	"github.com/mainbong/file_manager/internal/terminal"
)

var (
	logFile   string
	tailLines int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect session logs",
}

var logsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the session log",
	RunE: func(cmd *cobra.Command, args []string) error {
		viewer, err := openViewer()
		if err != nil {
			return err
		}
		defer viewer.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		err = viewer.Follow(ctx, tailLines, func(line string) {
			printRecord(out, logs.Parse(0, line))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

var logsSearchCmd = &cobra.Command{
	Use:   "search [pattern]",
	Short: "Print log lines matching a regular expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewer, err := openViewer()
		if err != nil {
			return err
		}
		defer viewer.Close()

		records, err := viewer.Search(args[0])
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

var logsFilterCmd = &cobra.Command{
	Use:   "filter [level]",
	Short: "Print log lines at or above a level (debug, info, warn, error)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewer, err := openViewer()
		if err != nil {
			return err
		}
		defer viewer.Close()

		records, err := viewer.Filter(args[0])
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

var logsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count sessions, commands and log levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		viewer, err := openViewer()
		if err != nil {
			return err
		}
		defer viewer.Close()

		summary, err := viewer.Summarize()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, viewer.Path())
		table := terminal.NewTable("Metric", "Count")
		table.AddRow("lines", strconv.Itoa(summary.Lines))
		table.AddRow("sessions", strconv.Itoa(summary.Sessions))
		table.AddRow("commands", strconv.Itoa(summary.Commands))
		table.AddRow("unknown commands", strconv.Itoa(summary.Unknown))
		for _, level := range logs.Levels {
			table.AddRow(level, strconv.Itoa(summary.ByLevel[level]))
		}
		return table.Render(out)
	},
}

func openViewer() (*logs.Viewer, error) {
	path := logFile
	if path == "" {
		latest, err := logs.Latest(cfg.LogDir)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	return logs.NewViewer(path)
}

func printRecords(w io.Writer, records []logs.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No matching log lines.")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(w, "%d: ", rec.Line)
		printRecord(w, rec)
	}
}

func printRecord(w io.Writer, rec logs.Record) {
	switch rec.Level {
	case "ERROR":
		color.New(color.FgRed).Fprintln(w, rec.Raw)
	case "WARN":
		color.New(color.FgYellow).Fprintln(w, rec.Raw)
	case "DEBUG":
		color.New(color.Faint).Fprintln(w, rec.Raw)
	default:
		fmt.Fprintln(w, rec.Raw)
	}
}
