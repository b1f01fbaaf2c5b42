package status

import (
	"sync"

	"github.com/anisan-cli/playtrack/analytics/record"
	tea "github.com/charmbracelet/bubbletea"
)

// Sink is a record.Sink feeding the status view.
type Sink struct {
	program *tea.Program
	once    sync.Once
	exited  chan struct{}
}

// New creates the view for title. Call Run to start rendering.
func New(title string, opts ...tea.ProgramOption) *Sink {
	return &Sink{
		program: tea.NewProgram(newModel(title), opts...),
		exited:  make(chan struct{}),
	}
}

// Run renders until the sink is closed or the user quits.
func (s *Sink) Run() error {
	defer close(s.exited)

	_, err := s.program.Run()
	return err
}

// Exited is closed once Run returns.
func (s *Sink) Exited() <-chan struct{} {
	return s.exited
}

func (s *Sink) Write(r record.Record) error {
	s.program.Send(recordMsg(r))
	return nil
}

// Close stops the view after the final records are drawn.
func (s *Sink) Close() error {
	s.once.Do(func() {
		s.program.Send(doneMsg{})
	})

	return nil
}
