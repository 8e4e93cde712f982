package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-timeline/internal/application/pipeline"
	"github.com/penwyp/go-timeline/internal/data/loader"
	"github.com/penwyp/go-timeline/internal/data/watcher"
	"github.com/penwyp/go-timeline/internal/presentation/display"
	"github.com/penwyp/go-timeline/internal/util"
)

const defaultDebounce = 200 * time.Millisecond

type watchOptions struct {
	titles   []string
	width    int
	report   string
	debounce time.Duration
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [FILE...]",
		Short: "Re-render timelines whenever their files change",
		Long: `Watch renders the given timelines, or the timelines of a report, on the
alternate screen and redraws them after every change. Press Ctrl+C to exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.titles, "title", "t", nil,
		"Column title, once per timeline")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0,
		"Column width (0 = terminal width / columns)")
	cmd.Flags().StringVar(&opts.report, "report", "",
		"Watch the timelines of this report file instead of FILE arguments")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", defaultDebounce,
		"Wait this long after a change before redrawing")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions, args []string) error {
	controller, err := watchController(opts, args)
	if err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher(controller.Paths())
	if err != nil {
		return fmt.Errorf("failed to watch files: %w", err)
	}
	defer fw.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen := display.NewScreen(cmd.OutOrStdout())
	screen.EnterAlternateScreen()
	defer screen.ExitAlternateScreen()

	draw := func(changed []string) {
		screen.Draw(frame(controller, opts.width, changed))
	}
	return watchLoop(ctx, fw.Events(), opts.debounce, draw)
}

func watchController(opts *watchOptions, args []string) (*pipeline.RefreshController, error) {
	if opts.report != "" {
		controller, r, err := loadReport(opts.report)
		if err != nil {
			return nil, err
		}
		if opts.width == 0 {
			opts.width = r.Width
		}
		return controller, nil
	}

	paths, err := collectPaths(args, "")
	if err != nil {
		return nil, err
	}
	sources, err := buildSources(paths, opts.titles, nil)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRefreshController(loader.NewLoader(runtime.NumCPU()), sources), nil
}

// frame renders the current state of the sources, a load or render error
// becoming the frame itself
func frame(controller *pipeline.RefreshController, width int, changed []string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s)\n", util.FormatOverviewTitle("go-timeline watch"),
		util.GetTimeProvider().Now().Format(time.DateTime))

	timelines, err := controller.Refresh(changed...)
	if err == nil {
		err = renderTimelines(&buf, timelines, controller.Titles(), width)
	}
	if err != nil {
		util.LogWarnf("Refresh failed: %v", err)
		fmt.Fprintf(&buf, "\nError: %v\n", err)
	}
	return buf.String()
}

// watchLoop draws once, then again after each burst of file events has been
// quiet for debounce. It returns when ctx is done or events is closed.
func watchLoop(ctx context.Context, events <-chan watcher.FileEvent, debounce time.Duration, draw func(changed []string)) error {
	draw(nil)

	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			util.LogDebugf("File %s: %s", ev.Operation, ev.Path)
			pending[ev.Path] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			pending = make(map[string]bool)
			fire = nil
			draw(changed)
		}
	}
}
