package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/data/loader"
	"github.com/penwyp/go-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-timeline/internal/util"
)

func newInspectCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a timeline or list its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := loader.NewLoader(1).LoadFile(expandPath(args[0]))
			if err != nil {
				return err
			}
			return writeTimeline(cmd, output, tl)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "summary",
		"Output format (summary, table, json, csv)")
	return cmd
}

func writeTimeline(cmd *cobra.Command, output string, tl *timeline.Timeline) error {
	f, err := formatter.New(output, formatter.Options{
		Clock: util.GetTimeProvider(),
		Zone:  timezone,
	})
	if err != nil {
		return err
	}
	return f.Format(cmd.OutOrStdout(), tl)
}
