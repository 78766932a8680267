package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Kind classifies a console message.
type Kind int

const (
	KindNormal Kind = iota
	KindCommand
	KindSuccess
	KindError
	KindWarning
	KindInfo
	KindMuted
)

// Semantic colors.
var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorInfo    = lipgloss.Color("#2196F3")
	colorMuted   = lipgloss.Color("#6b7280")
)

// Console writes styled messages for interactive sessions. Styles are
// rendered for the writer, so output to a pipe or file carries no escape
// codes.
type Console struct {
	w      io.Writer
	styles map[Kind]lipgloss.Style
	title  lipgloss.Style
	panel  lipgloss.Style
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w: w,
		styles: map[Kind]lipgloss.Style{
			KindNormal:  r.NewStyle(),
			KindCommand: r.NewStyle().Bold(true),
			KindSuccess: r.NewStyle().Foreground(colorSuccess),
			KindError:   r.NewStyle().Foreground(colorError).Bold(true),
			KindWarning: r.NewStyle().Foreground(colorWarning),
			KindInfo:    r.NewStyle().Foreground(colorInfo),
			KindMuted:   r.NewStyle().Foreground(colorMuted),
		},
		title: r.NewStyle().Bold(true).Foreground(colorSuccess),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
	}
}

// Println writes one styled line.
func (c *Console) Println(kind Kind, text string) {
	fmt.Fprintln(c.w, c.styles[kind].Render(text))
}

// Printf writes one formatted, styled line.
func (c *Console) Printf(kind Kind, format string, args ...any) {
	c.Println(kind, fmt.Sprintf(format, args...))
}

// Lines writes each line with the same style.
func (c *Console) Lines(kind Kind, lines []string) {
	for _, line := range lines {
		c.Println(kind, line)
	}
}

// Title writes a heading.
func (c *Console) Title(text string) {
	fmt.Fprintln(c.w, c.title.Render(text))
}

// Panel writes body inside a bordered box with a heading.
func (c *Console) Panel(heading, body string) {
	content := c.title.Render(heading)
	if body != "" {
		content += "\n" + body
	}
	fmt.Fprintln(c.w, c.panel.Render(content))
}
