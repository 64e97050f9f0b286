package traffic

// Altitude bands (feet) and speed gates (knots) for phase classification.
const (
	lowAltitudeFt       = 1000.0
	patternAltitudeFt   = 3000.0
	cruiseAltitudeFt    = 30000.0
	taxiSpeedGateKts    = 50.0
	takeoffSpeedGateKts = 100.0

	// Minimum altitude change between consecutive ticks to count as a
	// climb or descent trend rather than jitter.
	trendThresholdFt = 25.0
)

// Classify maps a single snapshot to a flight phase using instantaneous
// values only. Aircraft between 3000 and 30000 feet always classify as
// cruise, so this ruleset never produces descent or landing; ClassifyTrend
// covers those when altitude history is available.
func Classify(s RawAircraftSnapshot) Phase {
	if s.IsOnGround {
		if s.GroundSpeed > taxiSpeedGateKts {
			return PhaseTakeoff
		}
		return PhaseTaxi
	}
	if s.Altitude < lowAltitudeFt {
		if s.Speed > takeoffSpeedGateKts {
			return PhaseTakeoff
		}
		return PhaseApproach
	}
	if s.Altitude < patternAltitudeFt {
		return PhaseClimb
	}
	return PhaseCruise
}

// ClassifyTrend classifies using the altitude delta since the previous
// tick, so descending aircraft report descent, approach and landing
// instead of cruise. With no previous altitude it falls back to Classify.
func ClassifyTrend(s RawAircraftSnapshot, prevAltitude float64, hasPrev bool) Phase {
	if s.IsOnGround {
		if s.GroundSpeed > taxiSpeedGateKts {
			return PhaseTakeoff
		}
		return PhaseTaxi
	}
	if !hasPrev {
		return Classify(s)
	}

	delta := s.Altitude - prevAltitude
	climbing := delta > trendThresholdFt
	descending := delta < -trendThresholdFt

	switch {
	case s.Altitude < lowAltitudeFt:
		if climbing || s.Speed > takeoffSpeedGateKts {
			return PhaseTakeoff
		}
		return PhaseLanding
	case s.Altitude < patternAltitudeFt:
		if descending {
			return PhaseApproach
		}
		return PhaseClimb
	case s.Altitude >= cruiseAltitudeFt:
		return PhaseCruise
	case climbing:
		return PhaseClimb
	case descending:
		return PhaseDescent
	default:
		return PhaseCruise
	}
}
