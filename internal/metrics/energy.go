package metrics

import (
	"math"

	"github.com/san-kum/cluster/internal/cluster"
)

// EnergyDrift tracks the largest relative change of the total energy from
// the first observed state.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s cluster.Summary) {
	if e.samples == 0 {
		e.initialEnergy = s.Total
	}
	e.currentEnergy = s.Total
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(s.Total-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Final returns the relative drift of the last observed state.
func (e *EnergyDrift) Final() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// BoundEnergy reports the total energy of the bound subsystem in the last
// observed state.
type BoundEnergy struct {
	last float64
}

func NewBoundEnergy() *BoundEnergy { return &BoundEnergy{} }

func (b *BoundEnergy) Name() string              { return "bound_energy" }
func (b *BoundEnergy) Observe(s cluster.Summary) { b.last = s.BoundTotal }
func (b *BoundEnergy) Value() float64            { return b.last }
func (b *BoundEnergy) Reset()                    { b.last = 0 }

// VirialRatio reports 2K/|W| of the last observed state. A relaxed cluster
// sits near 1; a cold collapse starts at 0.
type VirialRatio struct {
	last float64
}

func NewVirialRatio() *VirialRatio { return &VirialRatio{} }

func (v *VirialRatio) Name() string { return "virial_ratio" }

func (v *VirialRatio) Observe(s cluster.Summary) {
	if s.Potential == 0 {
		v.last = 0
		return
	}
	v.last = 2 * s.Kinetic / math.Abs(s.Potential)
}

func (v *VirialRatio) Value() float64 { return v.last }
func (v *VirialRatio) Reset()         { v.last = 0 }
