package commands

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-timeline/internal/application/pipeline"
	"github.com/penwyp/go-timeline/internal/core/timeframe"
	"github.com/penwyp/go-timeline/internal/data/loader"
)

type transformOptions struct {
	where     []string
	last      []string
	from      int64
	until     int64
	since     time.Duration
	dedupe    bool
	sort      bool
	reverse   bool
	project   string
	deltas    string
	deltaKeys []string
	trim      int
	output    string
}

func newTransformCmd() *cobra.Command {
	opts := &transformOptions{}
	cmd := &cobra.Command{
		Use:   "transform FILE",
		Short: "Apply transformations to a timeline and print the result",
		Long: `Transform selects, orders, re-times and derives events, in this order:
where, from/until, since, dedupe, sort, reverse, project, last, deltas, trim.

Assignment values are read as JSON when possible, as text otherwise:
  --where status=done --where attempt=2 --last ok=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, opts, args[0])
		},
	}

	// Selection
	cmd.Flags().StringArrayVar(&opts.where, "where", nil,
		"Keep events holding key=value (repeatable)")
	cmd.Flags().Int64Var(&opts.from, "from", math.MinInt64,
		"Keep events overlapping the window starting at this timestamp")
	cmd.Flags().Int64Var(&opts.until, "until", math.MaxInt64,
		"Keep events overlapping the window ending at this timestamp")
	cmd.Flags().DurationVar(&opts.since, "since", 0,
		"Keep events anchored within this duration before now (e.g., 12h)")
	cmd.Flags().BoolVar(&opts.dedupe, "dedupe", false,
		"Drop repeated events")

	// Ordering
	cmd.Flags().BoolVar(&opts.sort, "sort", false,
		"Sort events by timestamp")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false,
		"Reverse the event order")

	// Re-timing and derivation
	cmd.Flags().StringVar(&opts.project, "project", "",
		"Re-time events from this attribute (a timestamp or a [from, until] pair)")
	cmd.Flags().StringArrayVar(&opts.last, "last", nil,
		"Keep the trailing run of events holding key=value (repeatable)")
	cmd.Flags().StringVar(&opts.deltas, "deltas", "",
		"Replace events by their differences (changes, numeric)")
	cmd.Flags().StringSliceVar(&opts.deltaKeys, "delta-keys", nil,
		"Attributes differenced by numeric deltas")

	// Retention and output
	cmd.Flags().IntVar(&opts.trim, "trim", 0,
		"Keep only the last N events (0 = all)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json",
		"Output format (json, csv, table, summary)")
	return cmd
}

func (o *transformOptions) config(cmd *cobra.Command) (pipeline.Config, error) {
	where, err := pipeline.ParseAssignments(o.where)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("--where: %w", err)
	}
	last, err := pipeline.ParseAssignments(o.last)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("--last: %w", err)
	}

	config := pipeline.Config{
		Where:     where,
		Since:     o.since,
		Dedupe:    o.dedupe,
		Sort:      o.sort,
		Reverse:   o.reverse,
		Project:   o.project,
		Last:      last,
		Deltas:    o.deltas,
		DeltaKeys: o.deltaKeys,
		Trim:      o.trim,
	}
	if cmd.Flags().Changed("from") || cmd.Flags().Changed("until") {
		window, err := timeframe.New(o.from, o.until)
		if err != nil {
			return pipeline.Config{}, fmt.Errorf("invalid window: %w", err)
		}
		config.Window = &window
	}
	return config, nil
}

func runTransform(cmd *cobra.Command, opts *transformOptions, path string) error {
	config, err := opts.config(cmd)
	if err != nil {
		return err
	}
	p, err := pipeline.New(config)
	if err != nil {
		return err
	}

	tl, err := loader.NewLoader(1).LoadFile(expandPath(path))
	if err != nil {
		return err
	}
	result, err := p.Apply(tl)
	if err != nil {
		return err
	}
	return writeTimeline(cmd, opts.output, result)
}
