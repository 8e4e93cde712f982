package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[36m"
	ColorBold  = "\033[1m"

	ClearScreen    = "\033[2J" // Clear entire screen
	MoveCursorHome = "\033[H"  // Move cursor to home position
	HideCursor     = "\033[?25l"
	ShowCursor     = "\033[?25h"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight left-aligns text in a column of the given display width.
// Text already wider than width is returned unchanged.
func PadRight(text string, width int) string {
	actual := GetDisplayWidth(text)
	if actual >= width {
		return text
	}
	return text + strings.Repeat(" ", width-actual)
}

// CenterText centers text within the given display width, extra space going right.
// Text wider than width is returned unchanged.
func CenterText(text string, width int) string {
	actual := GetDisplayWidth(text)
	if actual >= width {
		return text
	}
	padding := (width - actual) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-actual)
}

// FormatOverviewTitle formats overview/summary titles (Cyan + Bold)
func FormatOverviewTitle(title string) string {
	return ColorBold + ColorCyan + title + ColorReset
}
