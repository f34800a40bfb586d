package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
)

type ExportParticle struct {
	Position       []float64 `json:"position"`
	Kinetic        float64   `json:"kinetic"`
	Potential      float64   `json:"potential"`
	PotentialBound float64   `json:"potential_bound"`
	Bound          bool      `json:"bound"`
}

type ExportSnapshot struct {
	Time      float64          `json:"time"`
	Energy    float64          `json:"energy"`
	Bound     int              `json:"bound"`
	Particles []ExportParticle `json:"particles,omitempty"`
}

type ExportData struct {
	Meta      RunMetadata      `json:"meta"`
	Times     []float64        `json:"times"`
	Kinetic   []float64        `json:"kinetic"`
	Potential []float64        `json:"potential"`
	Total     []float64        `json:"total"`
	Bound     []int            `json:"bound"`
	Snapshots []ExportSnapshot `json:"snapshots,omitempty"`
}

// Export collects a run into one document. Per-particle data is included
// only with withParticles; snapshot times and energies are always included
// when the run kept a snapshot stream.
func (s *Store) Export(runID string, withParticles bool) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.LoadEnergy(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Meta:      *meta,
		Times:     make([]float64, len(summaries)),
		Kinetic:   make([]float64, len(summaries)),
		Potential: make([]float64, len(summaries)),
		Total:     make([]float64, len(summaries)),
		Bound:     make([]int, len(summaries)),
	}
	for i, sum := range summaries {
		data.Times[i] = sum.Time
		data.Kinetic[i] = jsonSafe(sum.Kinetic)
		data.Potential[i] = jsonSafe(sum.Potential)
		data.Total[i] = jsonSafe(sum.Total)
		data.Bound[i] = sum.Bound
	}

	if !s.HasSnapshots(runID) {
		return data, nil
	}
	_, records, err := s.LoadSnapshots(runID)
	if err != nil {
		return nil, err
	}
	data.Snapshots = make([]ExportSnapshot, len(records))
	for i, rec := range records {
		snap := ExportSnapshot{
			Time:   rec.Time,
			Energy: jsonSafe(rec.Energy),
			Bound:  rec.BoundCount(),
		}
		if withParticles {
			snap.Particles = make([]ExportParticle, len(rec.Particles))
			for j, p := range rec.Particles {
				pos := make([]float64, len(p.Position))
				for k, x := range p.Position {
					pos[k] = jsonSafe(x)
				}
				snap.Particles[j] = ExportParticle{
					Position:       pos,
					Kinetic:        jsonSafe(p.Kinetic),
					Potential:      jsonSafe(p.Potential),
					PotentialBound: jsonSafe(p.PotentialBound),
					Bound:          p.Bound,
				}
			}
		}
		data.Snapshots[i] = snap
	}
	return data, nil
}

// ExportJSON writes Export's document to w.
func (s *Store) ExportJSON(w io.Writer, runID string, withParticles bool) error {
	data, err := s.Export(runID, withParticles)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile writes the document to path.
func (s *Store) ExportJSONFile(path, runID string, withParticles bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(file, runID, withParticles)
}

// jsonSafe maps NaN and ±Inf, which JSON cannot carry, to zero.
func jsonSafe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
