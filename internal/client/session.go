package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// Entry is one line of chat history.
type Entry struct {
	Author  string
	Content string
}

// Frame is everything the renderer needs to draw one screen.
type Frame struct {
	Username string
	Server   string
	Entries  []Entry
	// Offset is the number of newest entries scrolled out of view.
	Offset int
	Input  string
}

// Renderer draws frames.
type Renderer interface {
	Render(f Frame) error
}

// EditAction is what a key press asks the session to do.
type EditAction int

const (
	EditNone EditAction = iota
	EditSubmit
	EditQuit
)

// Editor owns the line being typed.
type Editor interface {
	HandleKey(key tea.KeyMsg) EditAction
	Text() string
	Clear()
	Blink()
	View() string
}

// SessionConfig wires a ChatSession to its collaborators.
type SessionConfig struct {
	Username string
	Server   string
	Conn     io.Writer
	Editor   Editor
	Renderer Renderer
	Logger   *zap.Logger
}

// ChatSession is the single consumer of multiplexed events. It keeps the
// chat history, sends submitted lines and asks the renderer to redraw after
// every event.
type ChatSession struct {
	username string
	server   string
	writer   *lineWriter
	editor   Editor
	renderer Renderer
	logger   *zap.Logger
	history  []Entry
	offset   int
	running  bool
}

// NewChatSession creates a ChatSession.
func NewChatSession(cfg SessionConfig) *ChatSession {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSession{
		username: cfg.Username,
		server:   cfg.Server,
		writer:   &lineWriter{w: cfg.Conn},
		editor:   cfg.Editor,
		renderer: cfg.Renderer,
		logger:   logger,
		running:  true,
	}
}

// Run consumes events until the user quits, ctx is done or events is
// closed. Each event is handled to completion before the next is taken.
func (s *ChatSession) Run(ctx context.Context, events *Multiplexer) error {
	if err := s.render(); err != nil {
		return err
	}

	for s.running {
		ev, err := events.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}

		if !s.Handle(ev) {
			continue
		}
		if err := s.render(); err != nil {
			return err
		}
	}
	return nil
}

// Handle applies one event to the session state and reports whether the
// screen needs a redraw.
func (s *ChatSession) Handle(ev Event) bool {
	switch ev := ev.(type) {
	case KeyEvent:
		switch s.editor.HandleKey(ev.Key) {
		case EditQuit:
			s.running = false
		case EditSubmit:
			s.submit()
		}
		return true
	case MouseEvent:
		switch ev.Mouse.Button {
		case tea.MouseButtonWheelUp:
			return s.scrollUp()
		case tea.MouseButtonWheelDown:
			return s.scrollDown()
		}
		return false
	case TickEvent:
		s.editor.Blink()
		return true
	case ServerTextEvent:
		return s.Receive(ev.Text)
	case ServerClosedEvent:
		s.logger.Info("Server connection ended", zap.String("notice", ev.Notice), zap.Error(ev.Err))
		s.addEntry(protocol.SystemAuthor, ev.Notice)
		return true
	}
	return false
}

// Receive records one chunk of server text. Whitespace-only chunks are
// dropped and reported as false.
func (s *ChatSession) Receive(chunk string) bool {
	msg, ok := protocol.Parse(chunk)
	if !ok {
		return false
	}
	s.addEntry(msg.Sender, msg.Content)
	return true
}

// Send echoes text into the history and writes it to the server. A failed
// write leaves a System entry and keeps the connection.
func (s *ChatSession) Send(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.addEntry(s.username, text)
	if err := s.writer.writeLine(text); err != nil {
		s.logger.Warn("Failed to send message", zap.Error(err))
		s.addEntry(protocol.SystemAuthor, fmt.Sprintf("Failed to send message: %v", err))
	}
}

// Running reports whether the session still accepts events.
func (s *ChatSession) Running() bool {
	return s.running
}

// History returns a copy of the chat history.
func (s *ChatSession) History() []Entry {
	return append([]Entry(nil), s.history...)
}

// Offset returns how many of the newest entries are scrolled out of view.
func (s *ChatSession) Offset() int {
	return s.offset
}

// Frame returns the current screen state.
func (s *ChatSession) Frame() Frame {
	return Frame{
		Username: s.username,
		Server:   s.server,
		Entries:  s.history[:len(s.history):len(s.history)],
		Offset:   s.offset,
		Input:    s.editor.View(),
	}
}

func (s *ChatSession) submit() {
	text := s.editor.Text()
	if strings.TrimSpace(text) == "" {
		return
	}
	s.Send(text)
	s.editor.Clear()
}

func (s *ChatSession) addEntry(author, content string) {
	s.history = append(s.history, Entry{Author: author, Content: content})
	s.offset = 0
}

func (s *ChatSession) scrollUp() bool {
	if s.offset >= len(s.history)-1 {
		return false
	}
	s.offset++
	return true
}

func (s *ChatSession) scrollDown() bool {
	if s.offset == 0 {
		return false
	}
	s.offset--
	return true
}

func (s *ChatSession) render() error {
	if err := s.renderer.Render(s.Frame()); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	return nil
}

// lineWriter is the outbound path shared with the outside world.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

type flusher interface {
	Flush() error
}

func (lw *lineWriter) writeLine(text string) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if lw.w == nil {
		return errors.New("not connected to server")
	}
	if _, err := io.WriteString(lw.w, text+"\n"); err != nil {
		return err
	}
	if f, ok := lw.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
