package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/omochice/tcptalk/internal/client"
)

type frameMsg client.Frame

// model only mirrors the last frame; all chat state lives in the session.
type model struct {
	emit   func(client.Event)
	frame  client.Frame
	width  int
	height int
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.emit(client.KeyEvent{Key: msg})
	case tea.MouseMsg:
		m.emit(client.MouseEvent{Mouse: msg})
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case frameMsg:
		m.frame = client.Frame(msg)
	}
	return m, nil
}

func (m *model) View() string {
	return RenderFrame(m.frame, m.width, m.height)
}

// Program owns the terminal. It is both the key and mouse producer feeding
// the multiplexer and the Renderer the session draws through.
type Program struct {
	prog  *tea.Program
	model *model
}

var _ client.Renderer = (*Program)(nil)

// NewProgram prepares a full-screen program with mouse reporting.
func NewProgram(ctx context.Context, opts ...tea.ProgramOption) *Program {
	m := &model{}
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, opts...)
	return &Program{
		prog:  tea.NewProgram(m, opts...),
		model: m,
	}
}

// Producer runs the program, forwarding input to emit until Quit is called
// or ctx is cancelled.
func (p *Program) Producer() client.Producer {
	return func(ctx context.Context, emit func(client.Event)) error {
		p.model.emit = emit
		if _, err := p.prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run terminal ui: %w", err)
		}
		return nil
	}
}

// Render hands f to the UI goroutine for display.
func (p *Program) Render(f client.Frame) error {
	p.prog.Send(frameMsg(f))
	return nil
}

// Quit restores the terminal and stops the program.
func (p *Program) Quit() {
	p.prog.Quit()
}
