package spline

// durationEps is the smallest segment duration ever divided by. The solver may
// probe zero-length phases during line search; those are clamped here instead
// of producing NaNs mid-solve.
const durationEps = 1e-8

// cubicHermite is one spline segment p(t) = a + b·t + c·t² + d·t³ on
// t ∈ [0, T], fully determined by its two boundary nodes and duration.
type cubicHermite struct {
	dim        int
	T          float64
	a, b, c, d []float64
	n0, n1     Node
}

func newCubicHermite(dim int) cubicHermite {
	return cubicHermite{
		dim: dim,
		a:   make([]float64, dim),
		b:   make([]float64, dim),
		c:   make([]float64, dim),
		d:   make([]float64, dim),
	}
}

func (p *cubicHermite) update(T float64, n0, n1 Node) {
	if T < durationEps {
		T = durationEps
	}
	p.T = T
	p.n0, p.n1 = n0, n1
	T2, T3 := T*T, T*T*T
	for i := 0; i < p.dim; i++ {
		x0, v0 := n0.Pos[i], n0.Vel[i]
		x1, v1 := n1.Pos[i], n1.Vel[i]
		p.a[i] = x0
		p.b[i] = v0
		p.c[i] = -(3*(x0-x1) + T*(2*v0+v1)) / T2
		p.d[i] = (2*(x0-x1) + T*(v0+v1)) / T3
	}
}

func (p *cubicHermite) point(t float64) State {
	s := NewState(p.dim)
	t2, t3 := t*t, t*t*t
	for i := 0; i < p.dim; i++ {
		s.Pos[i] = p.a[i] + p.b[i]*t + p.c[i]*t2 + p.d[i]*t3
		s.Vel[i] = p.b[i] + 2*p.c[i]*t + 3*p.d[i]*t2
		s.Acc[i] = 2*p.c[i] + 6*p.d[i]*t
	}
	return s
}

// nodeWeights returns the sensitivity of p^(deriv)(t) to the four boundary
// node values (x0, v0, x1, v1). The weights are identical for every dimension
// because the Hermite basis does not couple dimensions.
func (p *cubicHermite) nodeWeights(t float64, d Deriv) (wx0, wv0, wx1, wv1 float64) {
	T := p.T
	T2, T3 := T*T, T*T*T

	// partials of the four polynomial coefficients w.r.t. (x0, v0, x1, v1)
	ca := [4]float64{1, 0, 0, 0}
	cb := [4]float64{0, 1, 0, 0}
	cc := [4]float64{-3 / T2, -2 / T, 3 / T2, -1 / T}
	cd := [4]float64{2 / T3, 1 / T2, -2 / T3, 1 / T2}

	var w [4]float64
	t2, t3 := t*t, t*t*t
	for i := 0; i < 4; i++ {
		switch d {
		case Pos:
			w[i] = ca[i] + cb[i]*t + cc[i]*t2 + cd[i]*t3
		case Vel:
			w[i] = cb[i] + 2*cc[i]*t + 3*cd[i]*t2
		case Acc:
			w[i] = 2*cc[i] + 6*cd[i]*t
		}
	}
	return w[0], w[1], w[2], w[3]
}

// derivWrtDuration returns ∂p(t)/∂T per dimension, holding the local time t
// and the boundary nodes fixed. Only the c and d coefficients depend on T.
func (p *cubicHermite) derivWrtDuration(t float64) []float64 {
	T := p.T
	T2, T3, T4 := T*T, T*T*T, T*T*T*T
	t2, t3 := t*t, t*t*t
	out := make([]float64, p.dim)
	for i := 0; i < p.dim; i++ {
		x0, v0 := p.n0.Pos[i], p.n0.Vel[i]
		x1, v1 := p.n1.Pos[i], p.n1.Vel[i]
		dc := 6*(x0-x1)/T3 + (2*v0+v1)/T2
		dd := -6*(x0-x1)/T4 - 2*(v0+v1)/T3
		out[i] = t2*dc + t3*dd
	}
	return out
}
