package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-timeline/internal/application/pipeline"
	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/data/loader"
	"github.com/penwyp/go-timeline/internal/presentation/layout"
	"github.com/penwyp/go-timeline/internal/util"
)

type renderOptions struct {
	titles []string
	width  int
	sort   bool
	dir    string
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [FILE...]",
		Short: "Render timelines side by side",
		Long: `Render prints one column per timeline and one block per distinct timestamp
across all of them. Without titles, each column is named after its file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.titles, "title", "t", nil,
		"Column title, once per timeline")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0,
		"Column width (0 = terminal width / columns)")
	cmd.Flags().BoolVar(&opts.sort, "sort", false,
		"Sort every timeline by timestamp before rendering")
	cmd.Flags().StringVar(&opts.dir, "dir", "",
		"Also render every timeline file found under this directory")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions, args []string) error {
	paths, err := collectPaths(args, opts.dir)
	if err != nil {
		return err
	}

	var p *pipeline.Pipeline
	if opts.sort {
		if p, err = pipeline.New(pipeline.Config{Sort: true}); err != nil {
			return err
		}
	}
	sources, err := buildSources(paths, opts.titles, p)
	if err != nil {
		return err
	}

	controller := pipeline.NewRefreshController(loader.NewLoader(runtime.NumCPU()), sources)
	timelines, err := controller.Refresh()
	if err != nil {
		return err
	}
	return renderTimelines(cmd.OutOrStdout(), timelines, controller.Titles(), opts.width)
}

// buildSources pairs every path with its title, file names standing in when
// no titles are given
func buildSources(paths, titles []string, p *pipeline.Pipeline) ([]pipeline.Source, error) {
	if len(titles) == 0 {
		titles = defaultTitles(paths)
	}
	if len(titles) != len(paths) {
		return nil, fmt.Errorf("%w: %d titles for %d timelines",
			timeline.ErrTitleCountMismatch, len(titles), len(paths))
	}
	sources := make([]pipeline.Source, len(paths))
	for i, path := range paths {
		sources[i] = pipeline.Source{Title: titles[i], Path: path, Pipeline: p}
	}
	return sources, nil
}

// renderTimelines writes the side by side rendering. A width below 1 splits
// the terminal width between the timelines.
func renderTimelines(w io.Writer, timelines []*timeline.Timeline, titles []string, width int) error {
	if width <= 0 {
		width = layout.DetectSizer().ColumnWidth(len(timelines))
	}
	err := timeline.Fprint(w, timelines, titles,
		timeline.RenderWidth(width),
		timeline.RenderZone(timezone),
		timeline.RenderClock(util.GetTimeProvider()))
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
