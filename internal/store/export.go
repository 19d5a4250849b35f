// Package store samples a solved trajectory onto a regular time grid and
// exports it for downstream tooling.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/san-kum/locoplan/internal/spline"
)

// Trajectory is the sampled plan of one solve.
type Trajectory struct {
	Robot    string         `json:"robot"`
	Duration float64        `json:"duration"`
	Dt       float64        `json:"dt"`
	Times    []float64      `json:"times"`
	BasePos  [][3]float64   `json:"base_pos"`
	BaseEul  [][3]float64   `json:"base_euler"`
	EEPos    [][][3]float64 `json:"ee_pos"`
	EEForce  [][][3]float64 `json:"ee_force"`
	Contact  [][]bool       `json:"contact"`
}

// Sample evaluates the spline bundle every dt over the full horizon.
func Sample(robot string, holder *spline.Holder, dt float64) (*Trajectory, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("sample step must be positive, got %f", dt)
	}
	total := holder.Total()
	tr := &Trajectory{
		Robot:    robot,
		Duration: total,
		Dt:       dt,
	}
	for t := 0.0; t <= total+1e-9; t += dt {
		if t > total {
			t = total
		}
		tr.Times = append(tr.Times, t)
		tr.BasePos = append(tr.BasePos, vec3(holder.BaseLinear.Point(t).Pos))
		tr.BaseEul = append(tr.BaseEul, vec3(holder.BaseAngular.Point(t).Pos))

		n := holder.EECount()
		eePos := make([][3]float64, n)
		eeForce := make([][3]float64, n)
		contact := make([]bool, n)
		for ee := 0; ee < n; ee++ {
			eePos[ee] = vec3(holder.EEMotion[ee].Point(t).Pos)
			eeForce[ee] = vec3(holder.EEForce[ee].Point(t).Pos)
			contact[ee] = holder.InContact(ee, t)
		}
		tr.EEPos = append(tr.EEPos, eePos)
		tr.EEForce = append(tr.EEForce, eeForce)
		tr.Contact = append(tr.Contact, contact)
	}
	return tr, nil
}

func ExportJSON(path string, tr *Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tr)
}

func ExportJSONStdout(tr *Trajectory) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tr)
}

func vec3(v []float64) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}
