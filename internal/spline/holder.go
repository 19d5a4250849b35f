package spline

// Holder bundles every spline of one locomotion problem behind a single
// queryable handle. It does not own the node sets or phase durations, which
// are registered with the problem as variable sets; it only aggregates them
// so constraints can be wired against one object.
type Holder struct {
	BaseLinear  *NodeSpline
	BaseAngular *NodeSpline
	EEMotion    []*PhaseSpline
	EEForce     []*PhaseSpline

	// firstPhaseContact records whether phase 0 of each end-effector is a
	// stance phase; phases alternate from there.
	firstPhaseContact []bool
}

func NewHolder(baseLin, baseAng *NodeSpline, motion, force []*PhaseSpline, firstContact []bool) *Holder {
	return &Holder{
		BaseLinear:        baseLin,
		BaseAngular:       baseAng,
		EEMotion:          motion,
		EEForce:           force,
		firstPhaseContact: firstContact,
	}
}

func (h *Holder) EECount() int { return len(h.EEMotion) }

func (h *Holder) Total() float64 { return h.BaseLinear.Total() }

// PhaseIsContact reports whether the given phase of an end-effector is a
// stance phase.
func (h *Holder) PhaseIsContact(ee, phase int) bool {
	if h.firstPhaseContact[ee] {
		return phase%2 == 0
	}
	return phase%2 == 1
}

// InContact reports whether an end-effector is in stance at time t, derived
// from the phase the motion spline assigns t to.
func (h *Holder) InContact(ee int, t float64) bool {
	phase, _ := h.EEMotion[ee].segmentAt(t)
	return h.PhaseIsContact(ee, phase)
}
