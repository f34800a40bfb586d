package progress

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/sim"
)

// scriptedProgram feeds sent messages through a Model until a DoneMsg, or
// fails immediately when runErr is set.
type scriptedProgram struct {
	model  Model
	runErr error
	msgs   chan tea.Msg
	exited chan struct{}
}

func newScriptedProgram(runErr error) *scriptedProgram {
	return &scriptedProgram{
		model:  NewModel("scripted", nil),
		runErr: runErr,
		msgs:   make(chan tea.Msg),
		exited: make(chan struct{}),
	}
}

func (p *scriptedProgram) Run() (tea.Model, error) {
	defer close(p.exited)
	if p.runErr != nil {
		return p.model, p.runErr
	}
	for msg := range p.msgs {
		next, _ := p.model.Update(msg)
		p.model = next.(Model)
		if _, ok := msg.(DoneMsg); ok {
			return p.model, nil
		}
	}
	return p.model, nil
}

func (p *scriptedProgram) Send(msg tea.Msg) {
	select {
	case <-p.exited:
	case p.msgs <- msg:
	}
}

// slowClose blocks until ctx is cancelled and then takes a while to finish,
// like a run flushing its snapshot stream.
func slowClose(closed *atomic.Bool) func(context.Context, sim.Observer) (*sim.Result, error) {
	return func(ctx context.Context, _ sim.Observer) (*sim.Result, error) {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		closed.Store(true)
		return &sim.Result{Integrator: "rk4"}, ctx.Err()
	}
}

func TestDrive_ProgramErrorWaitsForRun(t *testing.T) {
	var closed atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("no tty")
	res, err := drive(ctx, cancel, newScriptedProgram(boom), slowClose(&closed))
	assert.ErrorIs(t, err, boom)
	assert.True(t, closed.Load(), "run must have finished before drive returns")
	require.NotNil(t, res)
	assert.Equal(t, "rk4", res.Integrator)
}

func TestDrive_Completed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	want := &sim.Result{Integrator: "leapfrog", StepsTaken: 2}
	p := newScriptedProgram(nil)
	res, err := drive(ctx, cancel, p, func(_ context.Context, obs sim.Observer) (*sim.Result, error) {
		obs.OnStep(1, 2, cluster.Summary{Total: -1})
		obs.OnStep(2, 2, cluster.Summary{Total: -1})
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, res)
	assert.Equal(t, 2, p.model.step)
	assert.Len(t, p.model.energies, 2)
}

func TestRun_AbortWaitsForRun(t *testing.T) {
	var closed atomic.Bool
	_, err := Run(context.Background(), "abort", slowClose(&closed),
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, closed.Load(), "run must have finished before Run returns")
}
