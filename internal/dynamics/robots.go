package dynamics

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
)

// Named robot variants. All of them share the single-rigid-body contract and
// differ only in mass, inertia and stance geometry.

func NewMonoped() (*SingleRigidBody, error) {
	return New(Params{
		Name:    "monoped",
		Mass:    20,
		Inertia: diag(1.2, 5.5, 6.0),
		EECount: 1,
		NominalStance: []r3.Vector{
			{X: 0, Y: 0, Z: -0.58},
		},
		MaxDeviation: r3.Vector{X: 0.25, Y: 0.15, Z: 0.2},
	})
}

func NewBiped() (*SingleRigidBody, error) {
	return New(Params{
		Name:    "biped",
		Mass:    20,
		Inertia: diag(1.2, 5.5, 6.0),
		EECount: 2,
		NominalStance: []r3.Vector{
			{X: 0, Y: 0.20, Z: -0.58},
			{X: 0, Y: -0.20, Z: -0.58},
		},
		MaxDeviation: r3.Vector{X: 0.25, Y: 0.15, Z: 0.18},
	})
}

func NewQuadruped() (*SingleRigidBody, error) {
	return New(Params{
		Name:    "quadruped",
		Mass:    83,
		Inertia: diag(4.0, 8.5, 9.5),
		EECount: 4,
		NominalStance: []r3.Vector{
			{X: 0.34, Y: 0.19, Z: -0.58},
			{X: 0.34, Y: -0.19, Z: -0.58},
			{X: -0.34, Y: 0.19, Z: -0.58},
			{X: -0.34, Y: -0.19, Z: -0.58},
		},
		MaxDeviation: r3.Vector{X: 0.15, Y: 0.10, Z: 0.10},
	})
}

var robots = map[string]func() (*SingleRigidBody, error){
	"monoped":   NewMonoped,
	"biped":     NewBiped,
	"quadruped": NewQuadruped,
}

// ByName builds the named robot variant.
func ByName(name string) (*SingleRigidBody, error) {
	fn, ok := robots[name]
	if !ok {
		return nil, fmt.Errorf("unknown robot: %s", name)
	}
	return fn()
}

// Names lists the available robot variants, sorted.
func Names() []string {
	names := make([]string, 0, len(robots))
	for name := range robots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func diag(x, y, z float64) [9]float64 {
	return [9]float64{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}
