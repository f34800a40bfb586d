package progress

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/sim"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           string
	}{
		{"start", 0, 10, "\r[#          ] 0.0 % completed "},
		{"half", 5, 10, "\r[######     ] 50.0 % completed "},
		{"end", 10, 10, "\r[###########] 100.0 % completed "},
		{"no steps", 0, 0, "\r[###########] 100.0 % completed "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.current, tt.total, 10))
		})
	}
}

func TestBar_OnStep(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf, 4)

	for step := 1; step <= 3; step++ {
		b.OnStep(step, 3, cluster.Summary{})
	}
	b.Done()

	frames := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\r")[1:]
	require.Len(t, frames, 3)
	assert.Equal(t, "[#    ] 0.0 % completed ", frames[0])
	assert.Equal(t, "[###  ] 50.0 % completed ", frames[1])
	assert.Equal(t, "[#####] 100.0 % completed ", frames[2])

	assert.Equal(t, DefaultLength, NewBar(&buf, 0).length)
}

func TestModel_Update(t *testing.T) {
	cancelled := false
	m := NewModel("rk4 N=2", func() { cancelled = true })

	next, cmd := m.Update(StepMsg{Step: 5, Total: 20, Summary: cluster.Summary{Time: 0.5, Total: -1.25, Bound: 2, N: 2, Finite: true}})
	assert.Nil(t, cmd)
	m = next.(Model)
	assert.InDelta(t, 0.25, m.Fraction(), 1e-15)

	view := m.View()
	assert.Contains(t, view, "rk4 N=2")
	assert.Contains(t, view, "25.0 % completed (5/20)")
	assert.Contains(t, view, "-1.25")
	assert.Contains(t, view, "2/2")
	assert.NotContains(t, view, "non-finite")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, cancelled)
	m = next.(Model)
	assert.False(t, m.done)
}

func TestModel_Done(t *testing.T) {
	m := NewModel("lf", nil)
	for i := 1; i <= 3; i++ {
		next, _ := m.Update(StepMsg{Step: i, Total: 3, Summary: cluster.Summary{Total: -1 - float64(i)*1e-3, Finite: true}})
		m = next.(Model)
	}
	assert.Len(t, m.energies, 3)
	assert.Contains(t, m.View(), "Total energy")

	want := &sim.Result{Integrator: "leapfrog", StepsTaken: 3}
	next, cmd := m.Update(DoneMsg{Result: want})
	assert.NotNil(t, cmd)
	m = next.(Model)
	res, err := m.Result()
	require.NoError(t, err)
	assert.Same(t, want, res)
	assert.Contains(t, m.View(), "done")

	next, _ = m.Update(DoneMsg{Err: errors.New("boom")})
	assert.Contains(t, next.View(), "error: boom")
}

func TestModel_NonFinite(t *testing.T) {
	m := NewModel("eps=0", nil)
	next, _ := m.Update(StepMsg{Step: 1, Total: 2, Summary: cluster.Summary{Total: math.Inf(-1)}})
	m = next.(Model)
	next, _ = m.Update(StepMsg{Step: 2, Total: 2, Summary: cluster.Summary{Total: math.NaN()}})

	view := next.View()
	assert.Contains(t, view, "non-finite state")
	assert.NotContains(t, view, "Total energy")
}

func TestModel_HistoryCapacity(t *testing.T) {
	m := NewModel("long", nil)
	for i := 1; i <= historyCapacity+10; i++ {
		next, _ := m.Update(StepMsg{Step: i, Total: historyCapacity + 10, Summary: cluster.Summary{Total: float64(i)}})
		m = next.(Model)
	}
	require.Len(t, m.energies, historyCapacity)
	assert.Equal(t, 11.0, m.energies[0])
}
