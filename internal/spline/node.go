package spline

// Deriv selects which derivative of a trajectory is meant.
type Deriv int

const (
	Pos Deriv = iota
	Vel
	Acc
)

// Node is one boundary sample of a piecewise polynomial: position and
// velocity per dimension. Adjacent segments share their boundary node, which
// makes position/velocity continuity structural instead of a constraint.
type Node struct {
	Pos []float64
	Vel []float64
}

func NewNode(dim int) Node {
	return Node{Pos: make([]float64, dim), Vel: make([]float64, dim)}
}

func (n Node) Dim() int { return len(n.Pos) }

// At returns the node value for the given derivative order.
func (n Node) At(d Deriv) []float64 {
	if d == Vel {
		return n.Vel
	}
	return n.Pos
}

// State is the value of a trajectory at one time instant.
type State struct {
	Pos []float64
	Vel []float64
	Acc []float64
}

func NewState(dim int) State {
	return State{
		Pos: make([]float64, dim),
		Vel: make([]float64, dim),
		Acc: make([]float64, dim),
	}
}

// At returns the requested derivative of the state.
func (s State) At(d Deriv) []float64 {
	switch d {
	case Vel:
		return s.Vel
	case Acc:
		return s.Acc
	default:
		return s.Pos
	}
}
