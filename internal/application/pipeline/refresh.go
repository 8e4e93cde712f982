package pipeline

import (
	"fmt"
	"sync"

	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/data/loader"
	"github.com/penwyp/go-timeline/internal/util"
)

// Source is a titled timeline file and the pipeline applied to it.
// A nil Pipeline leaves the timeline as loaded.
type Source struct {
	Title    string
	Path     string
	Pipeline *Pipeline
}

// RefreshController reloads sources and re-applies their pipelines
type RefreshController struct {
	loader  *loader.Loader
	sources []Source

	refreshMutex sync.Mutex // Prevent concurrent refreshes
}

// NewRefreshController creates a new RefreshController instance
func NewRefreshController(l *loader.Loader, sources []Source) *RefreshController {
	return &RefreshController{loader: l, sources: sources}
}

// Titles returns the source titles in order
func (rc *RefreshController) Titles() []string {
	titles := make([]string, len(rc.sources))
	for i, source := range rc.sources {
		titles[i] = source.Title
	}
	return titles
}

// Paths returns the source paths in order
func (rc *RefreshController) Paths() []string {
	paths := make([]string, len(rc.sources))
	for i, source := range rc.sources {
		paths[i] = source.Path
	}
	return paths
}

// Refresh drops the changed files from the loader cache, then loads every
// source and applies its pipeline
func (rc *RefreshController) Refresh(changedFiles ...string) ([]*timeline.Timeline, error) {
	rc.refreshMutex.Lock()
	defer rc.refreshMutex.Unlock()

	for _, file := range changedFiles {
		rc.loader.Forget(file)
	}
	if len(changedFiles) > 0 {
		util.LogInfo(fmt.Sprintf("Refresh for %d changed files", len(changedFiles)))
	}

	loaded, err := rc.loader.LoadAll(rc.Paths())
	if err != nil {
		return nil, err
	}

	timelines := make([]*timeline.Timeline, len(loaded))
	for i, tl := range loaded {
		source := rc.sources[i]
		if source.Pipeline == nil {
			timelines[i] = tl
			continue
		}
		transformed, err := source.Pipeline.Apply(tl)
		if err != nil {
			return nil, fmt.Errorf("timeline %q: %w", source.Title, err)
		}
		timelines[i] = transformed
	}

	rc.logTimelineDetails(timelines)
	return timelines, nil
}

func (rc *RefreshController) logTimelineDetails(timelines []*timeline.Timeline) {
	for i, tl := range timelines {
		tf, err := tl.Timeframe()
		if err != nil || tf == nil {
			util.LogDebug(fmt.Sprintf("Timeline %q: %d events", rc.sources[i].Title, tl.Len()))
			continue
		}
		util.LogDebug(fmt.Sprintf("Timeline %q: %d events, %s", rc.sources[i].Title, tl.Len(), tf))
	}
}
