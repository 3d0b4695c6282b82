package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/omochice/tcptalk/internal/client"
	"github.com/omochice/tcptalk/pkg/protocol"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)
	selfStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	scrollStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// RenderFrame lays out one screen: a status bar, the visible tail of the
// history and the input line. Entries hidden by f.Offset are the newest ones.
func RenderFrame(f client.Frame, width, height int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	status := statusBar(f, width)
	bodyHeight := max(height-2, 0)

	visible := f.Entries
	if f.Offset > 0 && f.Offset < len(visible) {
		visible = visible[:len(visible)-f.Offset]
	}
	if len(visible) > bodyHeight {
		visible = visible[len(visible)-bodyHeight:]
	}

	lines := make([]string, 0, bodyHeight)
	for i := len(visible); i < bodyHeight; i++ {
		lines = append(lines, "")
	}
	clip := lipgloss.NewStyle().MaxWidth(width)
	for _, e := range visible {
		lines = append(lines, clip.Render(renderEntry(e, f.Username)))
	}

	var b strings.Builder
	b.WriteString(status)
	b.WriteByte('\n')
	if len(lines) > 0 {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteByte('\n')
	}
	b.WriteString(clip.Render(f.Input))
	return b.String()
}

func statusBar(f client.Frame, width int) string {
	title := titleStyle.Render(" tcptalk ")
	info := " Connected to " + f.Server
	if f.Username != "" {
		info += " as " + f.Username
	}
	if f.Offset > 0 {
		info += scrollStyle.Render("  [scrolled]")
	}
	rest := max(width-lipgloss.Width(title), 0)
	if pad := rest - lipgloss.Width(info); pad > 0 {
		info += strings.Repeat(" ", pad)
	}
	return title + statusStyle.Inline(true).MaxWidth(rest).Render(info)
}

func renderEntry(e client.Entry, self string) string {
	switch e.Author {
	case protocol.SystemAuthor:
		return systemStyle.Render(e.Content)
	case self:
		return selfStyle.Render(e.Author) + ": " + e.Content
	default:
		return authorStyle.Render(e.Author) + ": " + e.Content
	}
}
