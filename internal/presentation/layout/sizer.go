package layout

import (
	"os"

	"golang.org/x/term"

	"github.com/penwyp/go-timeline/internal/util"
)

const (
	defaultWidth   = 80
	defaultHeight  = 24
	minColumnWidth = 20
	columnGutter   = 3 // " | "
)

// Sizer splits a terminal into side by side columns
type Sizer struct {
	Width  int
	Height int
}

func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// DetectSizer measures the terminal behind stdout, falling back to 80x24
func DetectSizer() *Sizer {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		util.LogDebugf("Terminal size unavailable, using %dx%d: %v", defaultWidth, defaultHeight, err)
		return NewSizer(defaultWidth, defaultHeight)
	}
	return NewSizer(width, height)
}

// ColumnWidth returns the width of each of columns columns separated by
// " | ", never below minColumnWidth
func (s *Sizer) ColumnWidth(columns int) int {
	if columns <= 1 {
		return max(s.Width, minColumnWidth)
	}
	width := (s.Width - columnGutter*(columns-1)) / columns
	util.LogDebugf("ColumnWidth %d for %d columns", width, columns)
	return max(width, minColumnWidth)
}
