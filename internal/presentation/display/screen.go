package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/penwyp/go-timeline/internal/util"
)

const (
	enterAlternateScreen = "\033[?1049h"
	exitAlternateScreen  = "\033[?1049l"
	clearLine            = "\033[K"
)

// Screen redraws full frames on a terminal, in the alternate buffer once entered
type Screen struct {
	out               io.Writer
	mu                sync.Mutex
	inAlternateScreen bool
	previousScreen    []string
}

func NewScreen(out io.Writer) *Screen {
	return &Screen{out: out}
}

// EnterAlternateScreen switches to the alternate screen buffer
func (s *Screen) EnterAlternateScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inAlternateScreen {
		return
	}
	fmt.Fprint(s.out, enterAlternateScreen, util.ClearScreen, util.MoveCursorHome, util.HideCursor)
	s.inAlternateScreen = true
	s.previousScreen = nil
}

// ExitAlternateScreen returns to the normal screen buffer
func (s *Screen) ExitAlternateScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inAlternateScreen {
		return
	}
	fmt.Fprint(s.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, exitAlternateScreen)
	s.inAlternateScreen = false
}

// Draw replaces the frame with content. Lines equal to the previous frame
// are skipped; a shorter frame clears the leftover lines.
func (s *Screen) Draw(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := strings.Split(content, "\n")
	if !s.inAlternateScreen {
		fmt.Fprint(s.out, content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Fprintln(s.out)
		}
		return
	}

	var b strings.Builder
	b.WriteString(util.MoveCursorHome)
	for i, line := range lines {
		if i < len(s.previousScreen) && s.previousScreen[i] == line {
			b.WriteString("\n")
			continue
		}
		b.WriteString(line)
		b.WriteString(clearLine)
		b.WriteString("\n")
	}
	for i := len(lines); i < len(s.previousScreen); i++ {
		b.WriteString(clearLine)
		b.WriteString("\n")
	}
	fmt.Fprint(s.out, b.String())
	s.previousScreen = lines
}
