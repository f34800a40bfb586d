package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/integrators"
	"github.com/san-kum/cluster/internal/metrics"
	"github.com/san-kum/cluster/internal/sim"
)

type Registry struct {
	integrators map[string]func() cluster.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() cluster.Integrator),
	}

	r.integrators["rk4"] = func() cluster.Integrator { return integrators.NewRK4() }
	r.integrators["leapfrog"] = func() cluster.Integrator { return integrators.NewLeapfrog() }
	r.integrators["lf"] = r.integrators["leapfrog"]
	r.integrators["euler"] = func() cluster.Integrator { return integrators.NewEuler() }

	return r
}

// GetIntegrator returns a fresh instance; integrators keep scratch buffers
// and must not be shared between ensembles.
func (r *Registry) GetIntegrator(name string) (cluster.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	ms := metrics.Default()
	out := make([]sim.Metric, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}
