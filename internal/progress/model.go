package progress

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/sim"
)

const historyCapacity = 400

// StepMsg reports one advance of the ensemble.
type StepMsg struct {
	Step, Total int
	Summary     cluster.Summary
}

// DoneMsg ends the run.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

// Model is a terminal view of a running simulation: a progress bar, the
// current energetics and a chart of the total energy.
type Model struct {
	title    string
	width    int
	step     int
	total    int
	summary  cluster.Summary
	energies []float64
	done     bool
	err      error
	result   *sim.Result
	cancel   context.CancelFunc
}

func NewModel(title string, cancel context.CancelFunc) Model {
	return Model{
		title:    title,
		width:    DefaultLength,
		energies: make([]float64, 0, historyCapacity),
		cancel:   cancel,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case StepMsg:
		m.step, m.total, m.summary = msg.Step, msg.Total, msg.Summary
		m.energies = append(m.energies, msg.Summary.Total)
		if len(m.energies) > historyCapacity {
			m.energies = m.energies[1:]
		}
	case DoneMsg:
		m.done = true
		m.result, m.err = msg.Result, msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Fraction is the completed share of the run.
func (m Model) Fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.step) / float64(m.total)
}

// Result returns the outcome once a DoneMsg has been received.
func (m Model) Result() (*sim.Result, error) { return m.result, m.err }

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title) + "\n\n")

	filled := int(m.Fraction() * float64(m.width))
	s.WriteString("[" + filledStyle.Render(strings.Repeat("#", filled)) +
		emptyStyle.Render(strings.Repeat("·", m.width-filled)) + "] ")
	s.WriteString(fmt.Sprintf("%.1f %% completed (%d/%d)\n\n", m.Fraction()*100, m.step, m.total))

	s.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.4g", m.summary.Time)) + "\n")
	s.WriteString(labelStyle.Render("energy") + valueStyle.Render(fmt.Sprintf("%.6g", m.summary.Total)) + "\n")
	s.WriteString(labelStyle.Render("bound") + valueStyle.Render(fmt.Sprintf("%d/%d", m.summary.Bound, m.summary.N)) + "\n")
	if !m.summary.Finite && m.step > 0 {
		s.WriteString(warnStyle.Render("non-finite state") + "\n")
	}

	if series := finite(m.energies); len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(6), asciigraph.Width(50), asciigraph.Caption("Total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	case m.done:
		s.WriteString(valueStyle.Render("done") + "\n")
	default:
		s.WriteString(hintStyle.Render("q: abort") + "\n")
	}
	return panelStyle.Render(s.String())
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// program is the part of a tea.Program that drive uses.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// Observer forwards every advance to the program as a StepMsg.
func Observer(p program) sim.Observer {
	return sim.ObserverFunc(func(step, total int, s cluster.Summary) {
		p.Send(StepMsg{Step: step, Total: total, Summary: s})
	})
}

// Run drives fn under a terminal view. fn receives a context cancelled when
// the user aborts and an observer to attach to the simulator. Run returns
// only after fn has returned, so a snapshot stream closed by fn is complete.
func Run(ctx context.Context, title string, fn func(context.Context, sim.Observer) (*sim.Result, error), opts ...tea.ProgramOption) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return drive(ctx, cancel, tea.NewProgram(NewModel(title, cancel), opts...), fn)
}

func drive(ctx context.Context, cancel context.CancelFunc, p program, fn func(context.Context, sim.Observer) (*sim.Result, error)) (*sim.Result, error) {
	type outcome struct {
		res *sim.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := fn(ctx, Observer(p))
		// Send is a no-op once the program has exited.
		p.Send(DoneMsg{Result: res, Err: err})
		done <- outcome{res, err}
	}()

	final, err := p.Run()
	cancel()
	out := <-done
	if err != nil {
		return out.res, err
	}

	m, ok := final.(Model)
	if !ok || !m.done {
		if out.err != nil {
			return out.res, out.err
		}
		return out.res, context.Canceled
	}
	return m.Result()
}
