// Package analysis post-processes saved cluster runs.
//
//   - [EnergySeries], [RelativeDrift], [EnergyStatistics]: conservation of
//     the total energy over a run
//   - [BoundFractionSeries]: share of bound particles per saved state
//   - [RadialProfile], [LagrangianRadius]: spatial structure of one state
//   - [EnergySpectrum]: frequency content of the energy error
//   - [ProjectionToASCII]: a terminal view of particle positions
//
// # Integrator Comparison
//
// A symplectic scheme keeps its energy error bounded, so its drift rate is
// close to zero while RK4 shows a steady trend:
//
//	stats := analysis.EnergyStatistics(times, energies)
//	fmt.Printf("max drift %.2e, rate %.2e per time unit\n", stats.MaxDrift, stats.DriftRate)
package analysis
