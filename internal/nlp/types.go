package nlp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// VarKind enumerates every variable-set family the formulation knows about.
// Constraints dispatch their Jacobian blocks on this tag instead of on names,
// so the hot path never compares strings.
type VarKind int

const (
	BaseLin VarKind = iota
	BaseAng
	EEMotion
	EEForce
	EESchedule
)

func (k VarKind) String() string {
	switch k {
	case BaseLin:
		return "base-lin"
	case BaseAng:
		return "base-ang"
	case EEMotion:
		return "ee-motion"
	case EEForce:
		return "ee-force"
	case EESchedule:
		return "ee-schedule"
	default:
		return "unknown"
	}
}

// VarID identifies one variable set. EE is only meaningful for the
// per-end-effector kinds and is zero for the base sets.
type VarID struct {
	Kind VarKind
	EE   int
}

func (id VarID) String() string {
	switch id.Kind {
	case EEMotion, EEForce, EESchedule:
		return fmt.Sprintf("%s-%d", id.Kind, id.EE)
	default:
		return id.Kind.String()
	}
}

// Bounds is one scalar interval. Lower == Upper encodes an equality row.
type Bounds struct {
	Lower float64
	Upper float64
}

var (
	NoBound          = Bounds{math.Inf(-1), math.Inf(1)}
	BoundZero        = Bounds{0, 0}
	BoundGreaterZero = Bounds{0, math.Inf(1)}
	BoundSmallerZero = Bounds{math.Inf(-1), 0}
)

func (b Bounds) IsEquality() bool { return b.Lower == b.Upper }

// VariableSet is one block of optimization variables the solver mutates.
type VariableSet interface {
	ID() VarID
	Rows() int
	Values() []float64
	SetValues(x []float64)
	VarBounds() []Bounds
}

// ConstraintSet is one block of constraint rows. Jacobian writes the partial
// derivatives of all rows with respect to the named variable set into jac
// (Rows × set.Rows); a set the constraint does not depend on must be left
// untouched, which the caller pre-zeroes.
type ConstraintSet interface {
	Name() string
	Rows() int
	Values() []float64
	ConstraintBounds() []Bounds
	Jacobian(id VarID, jac *mat.Dense)
}

// Cost is one scalar term of the objective. Gradient adds the partial
// derivatives with respect to the named variable set into grad.
type Cost interface {
	Name() string
	Value() float64
	Gradient(id VarID, grad []float64)
}
