package constraints

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/angular"
	"github.com/san-kum/locoplan/internal/dynamics"
	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
)

// dynamicEval ties the spline-implied base acceleration to the acceleration
// the rigid-body model predicts from the end-effector forces. Six rows per
// instant: residual = acc_model − acc_spline. Every row is an equality to
// zero except linear-z, whose bound equals the gravitational constant: the
// model keeps gravity out of its linear acceleration, so the offset lives
// here.
type dynamicEval struct {
	model   dynamics.Model
	holder  *spline.Holder
	baseLin *spline.NodeSpline
	baseAng angular.EulerConverter
}

// NewDynamic builds the dynamic-consistency constraint, discretized every dt
// over the motion horizon.
func NewDynamic(model dynamics.Model, holder *spline.Holder, dt float64) (*TimeGrid, error) {
	if model.EECount() != holder.EECount() {
		return nil, fmt.Errorf("dynamic constraint: model has %d end-effectors, splines have %d",
			model.EECount(), holder.EECount())
	}
	conv, err := angular.NewEulerConverter(holder.BaseAngular)
	if err != nil {
		return nil, err
	}
	eval := &dynamicEval{
		model:   model,
		holder:  holder,
		baseLin: holder.BaseLinear,
		baseAng: conv,
	}
	return NewTimeGrid("dynamic", holder.Total(), dt, dynamics.K6D, eval)
}

// updateModel refreshes the model's instant-scoped state from the splines.
// It must run before every value or Jacobian query at a new t.
func (d *dynamicEval) updateModel(t float64) {
	comPos := toVec(d.baseLin.Point(t).Pos)
	omega := d.baseAng.AngularVelocityInWorld(t)

	n := d.holder.EECount()
	force := make([]r3.Vector, n)
	eePos := make([]r3.Vector, n)
	for ee := 0; ee < n; ee++ {
		force[ee] = toVec(d.holder.EEForce[ee].Point(t).Pos)
		eePos[ee] = toVec(d.holder.EEMotion[ee].Point(t).Pos)
	}
	// counts are validated at construction, so this cannot fail
	_ = d.model.SetCurrent(comPos, omega, force, eePos)
}

func (d *dynamicEval) ValuesAt(t float64, out []float64) {
	d.updateModel(t)
	accModel := d.model.BaseAccelerationInWorld()

	angAcc := d.baseAng.AngularAccelerationInWorld(t)
	linAcc := d.baseLin.Point(t).Acc

	out[dynamics.AX] = accModel[dynamics.AX] - angAcc.X
	out[dynamics.AY] = accModel[dynamics.AY] - angAcc.Y
	out[dynamics.AZ] = accModel[dynamics.AZ] - angAcc.Z
	out[dynamics.LX] = accModel[dynamics.LX] - linAcc[0]
	out[dynamics.LY] = accModel[dynamics.LY] - linAcc[1]
	out[dynamics.LZ] = accModel[dynamics.LZ] - linAcc[2]
}

func (d *dynamicEval) BoundsAt(t float64, out []nlp.Bounds) {
	g := d.model.G()
	for i := range out {
		if i == dynamics.LZ {
			out[i] = nlp.Bounds{Lower: g, Upper: g}
		} else {
			out[i] = nlp.BoundZero
		}
	}
}

func (d *dynamicEval) JacobianAt(t float64, id nlp.VarID, jac *mat.Dense) {
	d.updateModel(t)
	_, n := jac.Dims()

	switch id.Kind {
	case nlp.BaseLin:
		jacPos := mat.NewDense(3, n, nil)
		d.baseLin.JacobianWrtNodes(t, spline.Pos, jacPos)
		d.model.JacobianOfAccWrtBaseLin(jacPos, jac)

		jacAcc := mat.NewDense(3, n, nil)
		d.baseLin.JacobianWrtNodes(t, spline.Acc, jacAcc)
		for i := 0; i < 3; i++ {
			for j := 0; j < n; j++ {
				jac.Set(dynamics.LX+i, j, jac.At(dynamics.LX+i, j)-jacAcc.At(i, j))
			}
		}

	case nlp.BaseAng:
		jacAngVel := mat.NewDense(3, n, nil)
		d.baseAng.DerivOfAngVelWrtEulerNodes(t, jacAngVel)
		d.model.JacobianOfAccWrtBaseAng(jacAngVel, jac)

		jacAngAcc := mat.NewDense(3, n, nil)
		d.baseAng.DerivOfAngAccWrtEulerNodes(t, jacAngAcc)
		for i := 0; i < 3; i++ {
			for j := 0; j < n; j++ {
				jac.Set(dynamics.AX+i, j, jac.At(dynamics.AX+i, j)-jacAngAcc.At(i, j))
			}
		}

	case nlp.EEForce:
		if id.EE >= d.holder.EECount() {
			return
		}
		jacF := mat.NewDense(3, n, nil)
		d.holder.EEForce[id.EE].JacobianWrtNodes(t, spline.Pos, jacF)
		d.model.JacobianOfAccWrtForce(jacF, id.EE, jac)

	case nlp.EEMotion:
		if id.EE >= d.holder.EECount() {
			return
		}
		jacP := mat.NewDense(3, n, nil)
		d.holder.EEMotion[id.EE].JacobianWrtNodes(t, spline.Pos, jacP)
		d.model.JacobianOfAccWrtEEPos(jacP, id.EE, jac)

	case nlp.EESchedule:
		if id.EE >= d.holder.EECount() {
			return
		}
		// One scalar phase duration moves both the force profile and the
		// foot position through the shared timing, so the two chained
		// contributions add.
		jacFdT := mat.NewDense(3, n, nil)
		d.holder.EEForce[id.EE].JacobianOfPosWrtDurations(t, jacFdT)
		tmp := mat.NewDense(dynamics.K6D, n, nil)
		d.model.JacobianOfAccWrtForce(jacFdT, id.EE, tmp)
		jac.Add(jac, tmp)

		jacXdT := mat.NewDense(3, n, nil)
		d.holder.EEMotion[id.EE].JacobianOfPosWrtDurations(t, jacXdT)
		tmp.Zero()
		d.model.JacobianOfAccWrtEEPos(jacXdT, id.EE, tmp)
		jac.Add(jac, tmp)
	}
}

func toVec(p []float64) r3.Vector {
	return r3.Vector{X: p[0], Y: p[1], Z: p[2]}
}
