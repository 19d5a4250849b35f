// Package terrain is the seam for externally supplied height-map providers.
// Only the flat-ground provider lives here; richer terrains plug in through
// the same interface.
package terrain

// Terrain answers height and friction queries at a ground-plane coordinate.
type Terrain interface {
	Height(x, y float64) float64
	FrictionCoeff() float64
}

// FlatGround is a horizontal plane at a fixed elevation.
type FlatGround struct {
	Elevation float64
	Friction  float64
}

func NewFlatGround() *FlatGround {
	return &FlatGround{Elevation: 0, Friction: 0.5}
}

func (g *FlatGround) Height(x, y float64) float64 { return g.Elevation }
func (g *FlatGround) FrictionCoeff() float64      { return g.Friction }
