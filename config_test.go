package bedrock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTuningFillDefaults(t *testing.T) {
	filled := Tuning{}.fillDefaults()
	if filled != DefaultTuning() {
		t.Errorf("zero tuning filled to %+v, want defaults", filled)
	}

	custom := Tuning{VelocityIterations: 16, PenetrationSlop: 0.01}.fillDefaults()
	if custom.VelocityIterations != 16 {
		t.Error("explicit iteration count overwritten")
	}
	if custom.PenetrationSlop != 0.01 {
		t.Error("explicit slop overwritten")
	}
	if custom.PositionIterations != DefaultTuning().PositionIterations {
		t.Error("unset field not defaulted")
	}
}

func TestTuningSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")

	want := DefaultTuning()
	want.VelocityIterations = 12
	want.SpatialCellSize = 4

	if err := SaveTuning(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadTuning(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip: got %+v, want %+v", got, want)
	}
}

func TestLoadTuningPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(`{"velocityIterations": 20}`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTuning(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.VelocityIterations != 20 {
		t.Errorf("velocityIterations = %d, want 20", got.VelocityIterations)
	}
	if got.SleepTimeThreshold != DefaultTuning().SleepTimeThreshold {
		t.Error("missing fields must fall back to defaults")
	}
}

func TestLoadTuningErrors(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file must error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Error("malformed file must error")
	}
}
