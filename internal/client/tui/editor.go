// Package tui implements the terminal side of the tcptalk client: a
// bubbletea program that owns the screen and reports input, a line
// editor built on bubbles/textinput and a lipgloss frame renderer.
package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/omochice/tcptalk/internal/client"
	"github.com/omochice/tcptalk/pkg/protocol"
)

// Editor is a single-line input field.
type Editor struct {
	input textinput.Model
}

var _ client.Editor = (*Editor)(nil)

// NewEditor creates a focused Editor whose cursor blinks only when Blink
// is called.
func NewEditor() *Editor {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Type a message (Enter to send, Esc to quit)"
	in.CharLimit = protocol.ReadBufferSize - 1
	in.Focus()
	in.Cursor.SetMode(cursor.CursorStatic)
	return &Editor{input: in}
}

// HandleKey applies key to the field.
func (e *Editor) HandleKey(key tea.KeyMsg) client.EditAction {
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return client.EditQuit
	case tea.KeyEnter:
		return client.EditSubmit
	}

	// Commands are dropped; blinking is driven by the ticker.
	e.input, _ = e.input.Update(key)
	return client.EditNone
}

func (e *Editor) Text() string {
	return e.input.Value()
}

func (e *Editor) Clear() {
	e.input.Reset()
}

// Blink toggles cursor visibility.
func (e *Editor) Blink() {
	e.input.Cursor.Blink = !e.input.Cursor.Blink
}

func (e *Editor) View() string {
	return e.input.View()
}
