package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/util"
)

const defaultConcurrency = 4

type cacheEntry struct {
	info     *util.FileInfo
	timeline *timeline.Timeline
}

// Loader reads timeline files. A .jsonl file holds one event object per
// line, any other file a timeline JSON document.
type Loader struct {
	concurrency int
	decodeOpts  []event.DecodeOption
	mu          sync.Mutex
	cache       map[string]cacheEntry
}

// LoadResult represents the result of loading a single file.
type LoadResult struct {
	File     string
	Timeline *timeline.Timeline
	Error    error
}

// NewLoader creates a new Loader instance
func NewLoader(concurrency int, opts ...event.DecodeOption) *Loader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Loader{
		concurrency: concurrency,
		decodeOpts:  opts,
		cache:       make(map[string]cacheEntry),
	}
}

// LoadFile returns the timeline stored at path. Unchanged files are served
// from cache; callers get their own copy either way.
func (l *Loader) LoadFile(path string) (*timeline.Timeline, error) {
	info, err := util.GetFileInfo(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to stat file: %s - %v", path, err))
		return nil, err
	}

	l.mu.Lock()
	if cached, ok := l.cache[path]; ok && cached.info.Same(info) {
		l.mu.Unlock()
		util.LogDebugf("Cache hit: %s", path)
		return cached.timeline.Copy(), nil
	}
	l.mu.Unlock()

	util.LogDebug(fmt.Sprintf("Start loading file: %s", path))

	var tl *timeline.Timeline
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		tl, err = l.loadLines(path)
	} else {
		tl, err = l.loadDocument(path)
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[path] = cacheEntry{info: info, timeline: tl.Copy()}
	l.mu.Unlock()

	return tl, nil
}

func (l *Loader) loadDocument(path string) (*timeline.Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to read file: %s - %v", path, err))
		return nil, err
	}
	tl, err := timeline.FromJSON(data, l.decodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

func (l *Loader) loadLines(path string) (*timeline.Timeline, error) {
	file, err := os.Open(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open file: %s - %v", path, err))
		return nil, err
	}
	defer file.Close()

	tl := timeline.New(timeline.WithKind(event.DecodedKind(l.decodeOpts...)))
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		e, err := event.Decode(line, l.decodeOpts...)
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s:%d - %v", path, lineCount, err))
			continue
		}
		if err := tl.Append(e); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineCount, err)
		}
	}

	if err := scanner.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error scanning file: %s - %v", path, err))
		return nil, err
	}

	util.LogDebugf("Loaded %d events from %d lines: %s", tl.Len(), lineCount, path)
	return tl, nil
}

// Forget drops the cached timeline of path
func (l *Loader) Forget(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, path)
}

// LoadFiles loads multiple files concurrently and returns a channel of
// LoadResult, closed once all files are done. Results arrive in completion order.
func (l *Loader) LoadFiles(files []string) <-chan LoadResult {
	start := time.Now()
	results := make(chan LoadResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent loading of %d files, concurrency: %d", len(files), l.concurrency))

	semaphore := make(chan struct{}, l.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fileStart := time.Now()
			tl, err := l.LoadFile(f)
			if err != nil {
				util.LogDebug(fmt.Sprintf("File loading failed: %s, duration %v - %v", f, time.Since(fileStart), err))
			}

			results <- LoadResult{
				File:     f,
				Timeline: tl,
				Error:    err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent loading finished, total duration: %v", time.Since(start)))
	}()

	return results
}

// LoadAll loads files concurrently and returns the timelines in input
// order. The first failure is returned.
func (l *Loader) LoadAll(files []string) ([]*timeline.Timeline, error) {
	index := make(map[string][]int, len(files))
	for i, f := range files {
		index[f] = append(index[f], i)
	}

	timelines := make([]*timeline.Timeline, len(files))
	var firstErr error
	for result := range l.LoadFiles(unique(files)) {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to load %s: %w", result.File, result.Error)
			}
			continue
		}
		for n, i := range index[result.File] {
			if n == 0 {
				timelines[i] = result.Timeline
			} else {
				timelines[i] = result.Timeline.Copy()
			}
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return timelines, nil
}

func unique(files []string) []string {
	seen := make(map[string]bool, len(files))
	result := make([]string, 0, len(files))
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			result = append(result, f)
		}
	}
	return result
}
