package sink

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

// Console writes blocks to an interactive stream, typically stdout.
type Console struct {
	w      io.Writer
	header *lipgloss.Style
}

// NewConsole writes blocks verbatim.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// NewStyledConsole highlights the timestamp line. Colours are dropped automatically
// when w is not a terminal.
func NewStyledConsole(w io.Writer) *Console {
	style := lipgloss.NewRenderer(w).NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}).
		Bold(true)
	return &Console{w: w, header: &style}
}

func (c *Console) Write(block string) error {
	if c.header != nil {
		if first, rest, ok := strings.Cut(block, "\n"); ok {
			block = c.header.Render(first) + "\n" + rest
		}
	}

	if _, err := io.WriteString(c.w, block); err != nil {
		return errors.Wrap(err, "console write")
	}
	return nil
}

// Close is a no-op; the console stream is owned by the process.
func (c *Console) Close() error {
	return nil
}
