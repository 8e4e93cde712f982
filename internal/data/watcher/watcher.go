package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-timeline/internal/data/scanner"
	"github.com/penwyp/go-timeline/internal/util"
)

// FileEvent reports a change of a timeline file
type FileEvent struct {
	Path      string
	Operation string
}

// FileWatcher emits FileEvents for the timeline files under a set of paths.
// Directories are watched recursively, file paths through their directory.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	files   map[string]bool
	dirs    []string
	events  chan FileEvent
	done    chan struct{}
	once    sync.Once
}

func NewFileWatcher(paths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		paths:   paths,
		files:   make(map[string]bool),
		events:  make(chan FileEvent, 100),
		done:    make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		clean := filepath.Clean(path)
		fw.files[clean] = true
		return fw.watcher.Add(filepath.Dir(clean))
	}

	fw.dirs = append(fw.dirs, filepath.Clean(path))
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

// accepts returns true for watched files and timeline files under a watched directory
func (fw *FileWatcher) accepts(path string) bool {
	clean := filepath.Clean(path)
	if fw.files[clean] {
		return true
	}
	if !scanner.IsTimelineFile(clean) {
		return false
	}
	for _, dir := range fw.dirs {
		if rel, err := filepath.Rel(dir, clean); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.accepts(event.Name) {
				continue
			}
			select {
			case fw.events <- FileEvent{Path: event.Name, Operation: event.Op.String()}:
			case <-fw.done:
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// keep running
			util.LogError("File monitoring error: " + err.Error())

		case <-fw.done:
			return
		}
	}
}

// Events returns the change channel, closed after Close
func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}
