// Package cluster models a self-gravitating cluster of point masses.
//
// The package defines the simulation core:
//
//   - [Particle]: identity, mass and kinematic/energetic state of one body
//   - [Ensemble]: the particles plus the force and energy model over them
//   - [Integrator]: a time-stepping scheme driven through [System]
//   - [Recorder]: the sink for persisted snapshots
//
// # Example
//
//	cfg := cluster.DefaultConfig()
//	src := cluster.Sources{Masses: sample.New(1), Positions: sample.New(2)}
//	ens, err := cluster.New(cfg, integrators.NewLeapfrog(), src)
//	if err != nil {
//	    return err
//	}
//	ens.Open("run.dat")
//	ens.SaveState()
//	for i := 0; i < steps; i++ {
//	    if err := ens.Advance(0.01); err != nil {
//	        return err
//	    }
//	}
//	ens.Close()
//
// # Units
//
// G is not the physical constant. It is derived from the particle count,
// mean mass and cluster radius so that 3π/(32·ρ0) models one dynamical time.
//
// # Softening
//
// With Softening == 0 the force is the exact inverse-square law and close
// encounters may produce Inf or NaN. Those values propagate into positions,
// velocities and energies unchecked; choosing ε=0 makes that the caller's
// responsibility.
//
// # Thread Safety
//
// Ensemble instances are NOT thread-safe. All work for one Advance call
// completes before it returns.
package cluster
