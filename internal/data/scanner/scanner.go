package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-timeline/internal/util"
)

// Extensions of timeline files, matched case insensitively
var Extensions = []string{".json", ".jsonl"}

// IsTimelineFile returns true for paths with a timeline file extension
func IsTimelineFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// FileScanner finds timeline files under a directory
type FileScanner struct {
	baseDir string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{baseDir: baseDir}
}

// Scan walks the directory and returns every timeline file path in lexical order.
// Unreadable entries are skipped.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.baseDir))

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		if IsTimelineFile(path) {
			files = append(files, path)
		}
		return nil
	})

	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, %d files, found %d timeline files",
		time.Since(start), dirCount, totalCount, len(files)))

	return files, err
}
