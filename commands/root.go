package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/penwyp/go-timeline/internal/data/scanner"
	"github.com/penwyp/go-timeline/internal/util"
)

var (
	// Logging related
	debug     bool
	logFile   string
	logFormat string

	// Display related
	timezone string
)

const defaultTimezone = "UTC"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "go-timeline [command]",
		Short: "Timeline inspection and rendering tool",
		Long: `go-timeline loads event timelines stored as JSON documents or JSON lines,
transforms them and renders several of them side by side.

Examples:
  go-timeline render a.json b.json --title A --title B   # Render two timelines side by side
  go-timeline inspect events.jsonl --output table          # Show the events of a timeline
  go-timeline transform events.json --sort --deltas changes # Print the changes between events
  go-timeline report report.hcl                            # Render the timelines of a report
  go-timeline watch a.json b.json                          # Re-render whenever a file changes`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	// System and debugging
	cmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Write logs to this file")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", string(util.FormatText),
		"Log format (text, json)")

	// Display configuration
	cmd.PersistentFlags().StringVar(&timezone, "timezone", defaultTimezone,
		"Timezone of displayed dates (e.g., Asia/Shanghai, UTC, Local)")

	cmd.AddCommand(
		newRenderCmd(),
		newInspectCmd(),
		newTransformCmd(),
		newReportCmd(),
		newWatchCmd(),
	)
	return cmd
}

// setup initializes logging and the time provider, and tags the command
// context with a trace id
func setup(cmd *cobra.Command, args []string) error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	format := util.LogFormat(logFormat)
	if format != util.FormatText && format != util.FormatJSON {
		return fmt.Errorf("invalid log format '%s': must be either 'text' or 'json'", logFormat)
	}

	path := ""
	if logFile != "" {
		path = expandPath(logFile)
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := util.InitLogger(logLevel, path, debug, format); err != nil {
		return err
	}
	if err := util.InitializeTimeProvider(timezone); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = util.ContextWithTraceID(ctx, uuid.NewString())
	cmd.SetContext(ctx)

	util.Log(ctx).Debug("Command started",
		util.Field{Key: "command", Value: cmd.Name()},
		util.Field{Key: "args", Value: args})
	return nil
}

func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// collectPaths expands the file arguments and appends the timeline files
// found under dir
func collectPaths(args []string, dir string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		paths = append(paths, expandPath(arg))
	}
	if dir != "" {
		found, err := scanner.NewFileScanner(expandPath(dir)).Scan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no timeline files given")
	}
	return paths, nil
}

// defaultTitles names each timeline after its file
func defaultTitles(paths []string) []string {
	titles := make([]string, len(paths))
	for i, path := range paths {
		titles[i] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return titles
}
