// Package constants holds the physical constants shared by the simulator.
package constants

import "math"

const (
	// Pi is used for the cluster density normalization and angle sampling.
	Pi = math.Pi

	// GSI is the gravitational constant in SI units [m^3 kg^-1 s^-2].
	// The cluster model runs in scaled units and only reports it.
	GSI = 6.67384e-11
)
