package config

// Presets are ready-made scenarios per robot, keyed robot → name.
var Presets = map[string]map[string]*Config{
	"monoped": {
		"hop": {
			Robot: "monoped", Duration: 1.0,
			StartHeight: 0.58, GoalPos: [3]float64{0.3, 0, 0.58},
			PhaseDurations:    [][]float64{{0.4, 0.2, 0.4}},
			FirstPhaseContact: []bool{true},
		},
		"stand": {
			Robot: "monoped", Duration: 1.0,
			StartHeight: 0.58, GoalPos: [3]float64{0, 0, 0.58},
			PhaseDurations:    [][]float64{{1.0}},
			FirstPhaseContact: []bool{true},
		},
	},
	"biped": {
		"walk": {
			Robot: "biped", Duration: 2.0,
			StartHeight: 0.58, GoalPos: [3]float64{0.5, 0, 0.58},
			PhaseDurations: [][]float64{
				{0.6, 0.3, 1.1},
				{1.1, 0.3, 0.6},
			},
			FirstPhaseContact: []bool{true, true},
		},
	},
	"quadruped": {
		"trot": {
			Robot: "quadruped", Duration: 2.4,
			StartHeight: 0.58, GoalPos: [3]float64{0.8, 0, 0.58},
			PhaseDurations: [][]float64{
				{0.6, 0.3, 0.6, 0.3, 0.6},
				{0.3, 0.3, 0.6, 0.3, 0.9},
				{0.3, 0.3, 0.6, 0.3, 0.9},
				{0.6, 0.3, 0.6, 0.3, 0.6},
			},
			FirstPhaseContact: []bool{true, true, true, true},
		},
	},
}
