// Package progress renders clone progress for a terminal or a log stream.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const barWidth = 30

// Console writes informational lines and a progress bar to out.
//
// On an interactive terminal the bar is redrawn in place; otherwise each
// report is written as its own line.
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	// lineOpen is set while a progress bar without a trailing newline is on screen.
	lineOpen bool
	last     int

	infoStyle  lipgloss.Style
	warnStyle  lipgloss.Style
	barFull    lipgloss.Style
	barEmpty   lipgloss.Style
	labelStyle lipgloss.Style
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)

	return &Console{
		out:         out,
		interactive: isInteractive(out),
		last:        -1,
		infoStyle:   r.NewStyle().Bold(true),
		warnStyle:   r.NewStyle().Foreground(lipgloss.Color("#eab308")),
		barFull:     r.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		barEmpty:    r.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		labelStyle:  r.NewStyle().Foreground(lipgloss.Color("#6b7280")),
	}
}

func isInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Info prints a line of narration.
func (c *Console) Info(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.breakLine()
	fmt.Fprintln(c.out, c.infoStyle.Render(msg))
}

// Warn prints a highlighted line.
func (c *Console) Warn(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.breakLine()
	fmt.Fprintln(c.out, c.warnStyle.Render("Warning: "+msg))
}

// ReportProgress draws current out of total.
func (c *Console) ReportProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pct := percent(current, total)

	if !c.interactive {
		// Repeated values add nothing to a log stream.
		if pct == c.last {
			return
		}
		c.last = pct
		fmt.Fprintf(c.out, "Progress: %d%%\n", pct)
		return
	}

	c.last = pct
	filled := pct * barWidth / 100
	bar := c.barFull.Render(strings.Repeat("█", filled)) +
		c.barEmpty.Render(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(c.out, "\r%s %s %3d%%", c.labelStyle.Render("Progress:"), bar, pct)
	c.lineOpen = true
}

// ClearLine erases the progress bar so the next report redraws it.
func (c *Console) ClearLine() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.interactive || !c.lineOpen {
		return
	}
	fmt.Fprint(c.out, "\r\033[K")
	c.lineOpen = false
}

// breakLine ends an open progress line so narration starts on its own line.
func (c *Console) breakLine() {
	if c.lineOpen {
		fmt.Fprintln(c.out)
		c.lineOpen = false
	}
}

func percent(current, total int) int {
	if total <= 0 {
		return 0
	}
	p := current * 100 / total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
