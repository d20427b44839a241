// internal/host/params.go
package host

import (
	"time"

	"github.com/tamzrod/amsky-bridge/internal/status"
)

// Parameter is one weather channel in the registry.
type Parameter struct {
	Name      string
	Label     string
	Min, Max  float64
	Staleness time.Duration
	Critical  bool

	Value     float64
	HasValue  bool
	UpdatedAt time.Time
}

// State judges the parameter at now.
// Idle: never set. Alert: out of [Min, Max] or older than Staleness.
func (p *Parameter) State(now time.Time) State {
	if !p.HasValue {
		return StateIdle
	}
	if p.Stale(now) {
		return StateAlert
	}
	if p.Value < p.Min || p.Value > p.Max {
		return StateAlert
	}
	return StateOK
}

// Stale reports whether a set value has outlived its staleness timeout.
func (p *Parameter) Stale(now time.Time) bool {
	return p.HasValue && p.Staleness > 0 && now.Sub(p.UpdatedAt) > p.Staleness
}

type registry struct {
	list   []*Parameter
	byName map[string]*Parameter
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*Parameter)}
}

// add registers a parameter; re-adding a name replaces its limits.
func (r *registry) add(p Parameter) {
	if old, ok := r.byName[p.Name]; ok {
		old.Label, old.Min, old.Max, old.Staleness = p.Label, p.Min, p.Max, p.Staleness
		return
	}
	np := p
	r.list = append(r.list, &np)
	r.byName[p.Name] = &np
}

func (r *registry) get(name string) *Parameter {
	return r.byName[name]
}

// criticalState is the worst state among critical parameters.
func (r *registry) criticalState(now time.Time) State {
	st := StateIdle
	for _, p := range r.list {
		if p.Critical {
			st = worst(st, p.State(now))
		}
	}
	return st
}

func (r *registry) anyCriticalStale(now time.Time) bool {
	for _, p := range r.list {
		if p.Critical && p.Stale(now) {
			return true
		}
	}
	return false
}

func (r *registry) snapshot(now time.Time) []status.Param {
	out := make([]status.Param, 0, len(r.list))
	for _, p := range r.list {
		out = append(out, status.Param{
			Name:     p.Name,
			Label:    p.Label,
			Value:    p.Value,
			HasValue: p.HasValue,
			State:    stateCode(p.State(now)),
			Critical: p.Critical,
		})
	}
	return out
}

func stateCode(s State) uint16 {
	switch s {
	case StateOK:
		return status.StateOK
	case StateBusy:
		return status.StateBusy
	case StateAlert:
		return status.StateAlert
	default:
		return status.StateIdle
	}
}
