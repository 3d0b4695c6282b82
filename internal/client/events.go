package client

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Event is anything the ChatSession consumes.
type Event interface {
	event()
}

// KeyEvent carries one key press from the terminal.
type KeyEvent struct {
	Key tea.KeyMsg
}

// MouseEvent carries one pointer event from the terminal.
type MouseEvent struct {
	Mouse tea.MouseMsg
}

// TickEvent is emitted by the timer producer.
type TickEvent struct {
	At time.Time
}

// ServerTextEvent carries one raw chunk read from the server.
type ServerTextEvent struct {
	Text string
}

// ServerClosedEvent is the last event of the network producer.
type ServerClosedEvent struct {
	Notice string
	Err    error
}

func (KeyEvent) event()          {}
func (MouseEvent) event()        {}
func (TickEvent) event()         {}
func (ServerTextEvent) event()   {}
func (ServerClosedEvent) event() {}
