package cluster

import (
	"fmt"
	"os"

	"github.com/go-kit/log/level"

	"github.com/san-kum/cluster/internal/snapshot"
)

// Open creates path and starts a snapshot stream with the run's meta block.
func (e *Ensemble) Open(path string) error {
	if e.recorder != nil {
		return ErrAlreadyOpen
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cluster: open snapshot file: %w", err)
	}
	if err := e.Attach(snapshot.NewWriter(f)); err != nil {
		f.Close()
		return err
	}
	level.Debug(e.logger).Log("msg", "snapshot file opened", "path", path)
	return nil
}

// Attach installs rec as the destination of saved states. If rec implements
// HeaderWriter the run metadata is written first.
func (e *Ensemble) Attach(rec Recorder) error {
	if e.recorder != nil {
		return ErrAlreadyOpen
	}
	if hw, ok := rec.(HeaderWriter); ok {
		if err := hw.WriteHeader(e.Header()); err != nil {
			return fmt.Errorf("cluster: write snapshot header: %w", err)
		}
	}
	e.recorder = rec
	return nil
}

// Header describes this ensemble for a snapshot stream.
func (e *Ensemble) Header() snapshot.Header {
	return snapshot.Header{
		R0:         e.radius,
		N:          len(e.particles),
		Dim:        e.dim,
		Epsilon:    e.eps,
		SaveEach:   e.saveEach,
		G:          e.g,
		Integrator: e.integrator.Name(),
	}
}

// Snapshot returns the current state in persisted form: time, total energy,
// then per particle its position, kinetic energy, both potentials and the
// bound flag.
func (e *Ensemble) Snapshot() snapshot.Record {
	rec := snapshot.Record{
		Time:      e.t,
		Energy:    e.TotalEnergy(),
		Particles: make([]snapshot.Particle, len(e.particles)),
	}
	for i, p := range e.particles {
		rec.Particles[i] = snapshot.Particle{
			Position:       p.Position(),
			Kinetic:        p.kinetic,
			Potential:      p.potential,
			PotentialBound: p.potentialBound,
			Bound:          p.IsBound(),
		}
	}
	return rec
}

// SaveState writes the current state to the open recorder.
func (e *Ensemble) SaveState() error {
	if e.recorder == nil {
		return ErrNotOpen
	}
	return e.recorder.Record(e.Snapshot())
}

// Close finalizes the recorder. Closing an ensemble without one is a no-op.
func (e *Ensemble) Close() error {
	if e.recorder == nil {
		return nil
	}
	err := e.recorder.Close()
	e.recorder = nil
	level.Debug(e.logger).Log("msg", "snapshot stream closed", "t", e.t, "steps", e.steps, "err", err)
	return err
}
