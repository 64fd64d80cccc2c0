package bedrock

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Tuning bundles the numeric knobs of a world. All values have working
// defaults; zero fields in a loaded file fall back to them.
type Tuning struct {
	// Solver iteration counts.
	VelocityIterations int `json:"velocityIterations"`
	PositionIterations int `json:"positionIterations"`

	// Contact stabilization.
	PenetrationSlop float64 `json:"penetrationSlop"`
	BaumgarteFactor float64 `json:"baumgarteFactor"`

	// RestitutionThreshold is the approach speed below which contacts do not
	// bounce.
	RestitutionThreshold float64 `json:"restitutionThreshold"`

	// Sleep thresholds: a body below SleepVelocityThreshold for longer than
	// SleepTimeThreshold seconds goes to sleep.
	SleepVelocityThreshold float64 `json:"sleepVelocityThreshold"`
	SleepTimeThreshold     float64 `json:"sleepTimeThreshold"`

	// SpatialCellSize is the grid cell size when the spatial-hash broad
	// phase is selected.
	SpatialCellSize float64 `json:"spatialCellSize"`
}

// DefaultTuning returns the standard world tuning.
func DefaultTuning() Tuning {
	return Tuning{
		VelocityIterations:     8,
		PositionIterations:     3,
		PenetrationSlop:        0.005,
		BaumgarteFactor:        0.2,
		RestitutionThreshold:   1.0,
		SleepVelocityThreshold: 0.05,
		SleepTimeThreshold:     0.5,
		SpatialCellSize:        2.0,
	}
}

// fillDefaults replaces zero fields with their defaults.
func (t Tuning) fillDefaults() Tuning {
	def := DefaultTuning()
	if t.VelocityIterations <= 0 {
		t.VelocityIterations = def.VelocityIterations
	}
	if t.PositionIterations <= 0 {
		t.PositionIterations = def.PositionIterations
	}
	if t.PenetrationSlop <= 0 {
		t.PenetrationSlop = def.PenetrationSlop
	}
	if t.BaumgarteFactor <= 0 {
		t.BaumgarteFactor = def.BaumgarteFactor
	}
	if t.RestitutionThreshold <= 0 {
		t.RestitutionThreshold = def.RestitutionThreshold
	}
	if t.SleepVelocityThreshold <= 0 {
		t.SleepVelocityThreshold = def.SleepVelocityThreshold
	}
	if t.SleepTimeThreshold <= 0 {
		t.SleepTimeThreshold = def.SleepTimeThreshold
	}
	if t.SpatialCellSize <= 0 {
		t.SpatialCellSize = def.SpatialCellSize
	}
	return t
}

// LoadTuning reads a tuning file, filling missing fields with defaults.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, errors.WithMessagef(err, "read tuning %s", path)
	}
	var t Tuning
	if err := json.Unmarshal(data, &t); err != nil {
		return Tuning{}, errors.WithMessagef(err, "parse tuning %s", path)
	}
	return t.fillDefaults(), nil
}

// SaveTuning writes the tuning as indented JSON.
func SaveTuning(path string, t Tuning) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.WithMessage(err, "encode tuning")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WithMessagef(err, "write tuning %s", path)
	}
	return nil
}
