package report

import (
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/penwyp/go-timeline/internal/application/pipeline"
	"github.com/penwyp/go-timeline/internal/core/timeframe"
)

// HCLReport is the file level structure of a report
type HCLReport struct {
	Width     *int          `hcl:"width,optional"`
	Timezone  *string       `hcl:"timezone,optional"`
	Timelines []HCLTimeline `hcl:"timeline,block"`
}

// HCLTimeline describes one rendered column
type HCLTimeline struct {
	Title     string         `hcl:"title,label"`
	Source    string         `hcl:"source"`
	Where     *hcl.Attribute `hcl:"where,optional"`
	From      *int64         `hcl:"from,optional"`
	Until     *int64         `hcl:"until,optional"`
	Since     *string        `hcl:"since,optional"`
	Dedupe    *bool          `hcl:"dedupe,optional"`
	Sort      *bool          `hcl:"sort,optional"`
	Reverse   *bool          `hcl:"reverse,optional"`
	Project   *string        `hcl:"project,optional"`
	Last      *hcl.Attribute `hcl:"last,optional"`
	Deltas    *string        `hcl:"deltas,optional"`
	DeltaKeys []string       `hcl:"delta_keys,optional"`
	Trim      *int           `hcl:"trim,optional"`
}

// Report is a decoded report, ready to load and render
type Report struct {
	Width     int
	Timezone  string
	Timelines []Entry
}

// Entry is a titled source and its transformations
type Entry struct {
	Title    string
	Source   string
	Pipeline pipeline.Config
}

// Load reads a report file. Relative sources resolve against its directory.
func Load(path string) (*Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	r, err := Parse(content, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range r.Timelines {
		if !filepath.IsAbs(r.Timelines[i].Source) {
			r.Timelines[i].Source = filepath.Join(dir, r.Timelines[i].Source)
		}
	}
	return r, nil
}

// Parse decodes HCL report content
func Parse(content []byte, filename string) (*Report, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	evalCtx := newEvalContext()

	var hclReport HCLReport
	diags = gohcl.DecodeBody(file.Body, evalCtx, &hclReport)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	if len(hclReport.Timelines) == 0 {
		return nil, fmt.Errorf("report must include at least one timeline block")
	}

	r := &Report{}
	if hclReport.Width != nil {
		if *hclReport.Width < 0 {
			return nil, fmt.Errorf("width must not be negative, got %d", *hclReport.Width)
		}
		r.Width = *hclReport.Width
	}
	if hclReport.Timezone != nil {
		r.Timezone = *hclReport.Timezone
	}

	for _, block := range hclReport.Timelines {
		config, err := convertTimeline(block, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("timeline %q: %w", block.Title, err)
		}
		r.Timelines = append(r.Timelines, Entry{
			Title:    block.Title,
			Source:   block.Source,
			Pipeline: config,
		})
	}
	return r, nil
}

// Titles returns the timeline titles in order
func (r *Report) Titles() []string {
	titles := make([]string, len(r.Timelines))
	for i, entry := range r.Timelines {
		titles[i] = entry.Title
	}
	return titles
}

func convertTimeline(block HCLTimeline, evalCtx *hcl.EvalContext) (pipeline.Config, error) {
	var config pipeline.Config

	var err error
	if config.Where, err = evalMap(block.Where, evalCtx); err != nil {
		return config, fmt.Errorf("failed to evaluate where: %w", err)
	}
	if config.Last, err = evalMap(block.Last, evalCtx); err != nil {
		return config, fmt.Errorf("failed to evaluate last: %w", err)
	}

	if block.From != nil || block.Until != nil {
		from, until := int64(math.MinInt64), int64(math.MaxInt64)
		if block.From != nil {
			from = *block.From
		}
		if block.Until != nil {
			until = *block.Until
		}
		window, err := timeframe.New(from, until)
		if err != nil {
			return config, fmt.Errorf("invalid window: %w", err)
		}
		config.Window = &window
	}

	if block.Since != nil {
		since, err := time.ParseDuration(*block.Since)
		if err != nil {
			return config, fmt.Errorf("failed to parse since: %w", err)
		}
		config.Since = since
	}

	config.Dedupe = boolValue(block.Dedupe)
	config.Sort = boolValue(block.Sort)
	config.Reverse = boolValue(block.Reverse)
	if block.Project != nil {
		config.Project = *block.Project
	}
	if block.Deltas != nil {
		config.Deltas = *block.Deltas
	}
	config.DeltaKeys = block.DeltaKeys
	if block.Trim != nil {
		config.Trim = *block.Trim
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

// newEvalContext provides ts("RFC3339") returning the UNIX timestamp of a date
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"ts": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "date",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					date, err := time.Parse(time.RFC3339, args[0].AsString())
					if err != nil {
						return cty.NilVal, fmt.Errorf("failed to parse date: %w", err)
					}
					return cty.NumberIntVal(date.Unix()), nil
				},
			}),
		},
	}
}

func evalMap(attr *hcl.Attribute, evalCtx *hcl.EvalContext) (map[string]any, error) {
	if attr == nil {
		return nil, nil
	}
	val, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", val.Type().FriendlyName())
	}
	return ctyValueToMap(val), nil
}

// ctyValueToMap converts an object or map cty.Value to a Go map
func ctyValueToMap(val cty.Value) map[string]any {
	result := make(map[string]any)
	for key, attr := range val.AsValueMap() {
		result[key] = ctyValueToInterface(attr)
	}
	return result
}

// ctyValueToInterface converts a cty.Value to a JSON-like Go value, integral
// numbers as int64
func ctyValueToInterface(val cty.Value) any {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}

	switch {
	case val.Type() == cty.String:
		return val.AsString()
	case val.Type() == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, accuracy := bf.Int64(); accuracy == big.Exact {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case val.Type() == cty.Bool:
		return val.True()
	case val.Type().IsObjectType() || val.Type().IsMapType():
		return ctyValueToMap(val)
	case val.Type().IsListType() || val.Type().IsTupleType() || val.Type().IsSetType():
		values := val.AsValueSlice()
		result := make([]any, len(values))
		for i, v := range values {
			result[i] = ctyValueToInterface(v)
		}
		return result
	default:
		return val.GoString()
	}
}
