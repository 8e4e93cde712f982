package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-timeline/internal/application/pipeline"
	"github.com/penwyp/go-timeline/internal/config/report"
	"github.com/penwyp/go-timeline/internal/data/loader"
)

func newReportCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "report FILE.hcl",
		Short: "Render the timelines described in a report file",
		Long: `A report names timelines, their source files and transformations:

  width    = 60
  timezone = "Asia/Shanghai"

  timeline "deploys" {
    source = "deploys.jsonl"
    where  = { env = "prod" }
    from   = ts("2024-01-01T00:00:00Z")
    sort   = true
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, r, err := loadReport(args[0])
			if err != nil {
				return err
			}
			timelines, err := controller.Refresh()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("width") {
				width = r.Width
			}
			if r.Timezone != "" && !cmd.Flags().Changed("timezone") {
				timezone = r.Timezone
			}
			return renderTimelines(cmd.OutOrStdout(), timelines, controller.Titles(), width)
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 0,
		"Column width, overriding the report (0 = terminal width / columns)")
	return cmd
}

// loadReport parses a report and prepares the controller loading its timelines
func loadReport(path string) (*pipeline.RefreshController, *report.Report, error) {
	r, err := report.Load(expandPath(path))
	if err != nil {
		return nil, nil, err
	}

	sources := make([]pipeline.Source, len(r.Timelines))
	for i, entry := range r.Timelines {
		p, err := pipeline.New(entry.Pipeline)
		if err != nil {
			return nil, nil, err
		}
		sources[i] = pipeline.Source{Title: entry.Title, Path: entry.Source, Pipeline: p}
	}
	return pipeline.NewRefreshController(loader.NewLoader(runtime.NumCPU()), sources), r, nil
}
