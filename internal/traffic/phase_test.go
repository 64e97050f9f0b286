package traffic

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		snap RawAircraftSnapshot
		want Phase
	}{
		{"parked", RawAircraftSnapshot{IsOnGround: true, GroundSpeed: 0}, PhaseTaxi},
		{"taxiing", RawAircraftSnapshot{IsOnGround: true, GroundSpeed: 25}, PhaseTaxi},
		{"ground boundary speed", RawAircraftSnapshot{IsOnGround: true, GroundSpeed: 50}, PhaseTaxi},
		{"takeoff roll", RawAircraftSnapshot{IsOnGround: true, GroundSpeed: 60}, PhaseTakeoff},
		{"low and very slow", RawAircraftSnapshot{Altitude: 500, Speed: 50}, PhaseApproach},
		{"low and fast", RawAircraftSnapshot{Altitude: 500, Speed: 150}, PhaseTakeoff},
		{"low boundary speed", RawAircraftSnapshot{Altitude: 500, Speed: 100}, PhaseApproach},
		{"low and slow", RawAircraftSnapshot{Altitude: 800, Speed: 90}, PhaseApproach},
		{"pattern altitude", RawAircraftSnapshot{Altitude: 2000, Speed: 200}, PhaseClimb},
		{"low altitude boundary", RawAircraftSnapshot{Altitude: 1000, Speed: 250}, PhaseClimb},
		{"pattern boundary", RawAircraftSnapshot{Altitude: 3000, Speed: 250}, PhaseCruise},
		{"mid altitude", RawAircraftSnapshot{Altitude: 15000, Speed: 300}, PhaseCruise},
		{"high cruise", RawAircraftSnapshot{Altitude: 36000, Speed: 450}, PhaseCruise},
		// Ground flag wins over altitude values
		{"ground flag overrides altitude", RawAircraftSnapshot{IsOnGround: true, Altitude: 5000, GroundSpeed: 10}, PhaseTaxi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.snap); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The instantaneous ruleset cannot tell a descending aircraft from a
// cruising one, so descent and landing never appear in its output.
func TestClassifyNeverEmitsDescentOrLanding(t *testing.T) {
	for alt := 0.0; alt <= 45000; alt += 250 {
		for _, speed := range []float64{0, 60, 120, 250, 480} {
			got := Classify(RawAircraftSnapshot{Altitude: alt, Speed: speed})
			if got == PhaseDescent || got == PhaseLanding {
				t.Fatalf("Classify(alt=%v, speed=%v) = %q", alt, speed, got)
			}
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name    string
		snap    RawAircraftSnapshot
		prevAlt float64
		hasPrev bool
		want    Phase
	}{
		{"no history falls back", RawAircraftSnapshot{Altitude: 15000, Speed: 300}, 0, false, PhaseCruise},
		{"taxiing", RawAircraftSnapshot{IsOnGround: true, GroundSpeed: 20}, 0, true, PhaseTaxi},
		{"takeoff roll", RawAircraftSnapshot{IsOnGround: true, GroundSpeed: 90}, 0, true, PhaseTakeoff},
		{"low climbing out", RawAircraftSnapshot{Altitude: 700, Speed: 90}, 400, true, PhaseTakeoff},
		{"short final", RawAircraftSnapshot{Altitude: 600, Speed: 80}, 900, true, PhaseLanding},
		{"level low and slow", RawAircraftSnapshot{Altitude: 600, Speed: 80}, 600, true, PhaseLanding},
		{"pattern descending", RawAircraftSnapshot{Altitude: 2500, Speed: 180}, 2900, true, PhaseApproach},
		{"pattern climbing", RawAircraftSnapshot{Altitude: 2500, Speed: 200}, 2100, true, PhaseClimb},
		{"mid climbing", RawAircraftSnapshot{Altitude: 12000, Speed: 300}, 11500, true, PhaseClimb},
		{"mid descending", RawAircraftSnapshot{Altitude: 12000, Speed: 300}, 12500, true, PhaseDescent},
		{"mid level", RawAircraftSnapshot{Altitude: 12000, Speed: 300}, 12010, true, PhaseCruise},
		{"high cruise descending slightly", RawAircraftSnapshot{Altitude: 36000, Speed: 450}, 36100, true, PhaseCruise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(tt.snap, tt.prevAlt, tt.hasPrev); got != tt.want {
				t.Errorf("ClassifyTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The roster defaults to the instantaneous ruleset unless the corrected
// one is enabled in config.
func TestRosterDefaultRuleset(t *testing.T) {
	r := NewRoster(1, false)
	r.ApplySnapshotBatch(SnapshotBatch{
		"DAL100": {Altitude: 12000, Speed: 300},
	}, testTime())
	// Second tick descending 500ft: legacy rules still say cruise.
	r.ApplySnapshotBatch(SnapshotBatch{
		"DAL100": {Altitude: 11500, Speed: 300},
	}, testTime())

	got, ok := r.GetByCallsign("DAL100")
	if !ok {
		t.Fatal("aircraft missing from roster")
	}
	if got.Phase != PhaseCruise {
		t.Errorf("Phase = %q, want %q", got.Phase, PhaseCruise)
	}

	corrected := NewRoster(1, true)
	corrected.ApplySnapshotBatch(SnapshotBatch{
		"DAL100": {Altitude: 12000, Speed: 300},
	}, testTime())
	corrected.ApplySnapshotBatch(SnapshotBatch{
		"DAL100": {Altitude: 11500, Speed: 300},
	}, testTime())

	got, _ = corrected.GetByCallsign("DAL100")
	if got.Phase != PhaseDescent {
		t.Errorf("corrected Phase = %q, want %q", got.Phase, PhaseDescent)
	}
}
