package traffic

import (
	"sync"
	"time"
)

// Roster is the live aircraft table. Snapshot batches replace it
// wholesale each tick; flight plans live in a side table keyed by
// callsign so they survive a callsign briefly dropping off the feed.
//
// All exported methods are safe for concurrent use. Reads hand out
// copies, so callers never observe a later tick mutating their result.
type Roster struct {
	mu       sync.RWMutex
	aircraft map[string]*EnhancedAircraft
	missed   map[string]int
	plans    map[string]*FlightPlan

	graceTicks     int
	correctedRules bool
}

// NewRoster builds an empty roster. graceTicks is how many consecutive
// batches an aircraft may be absent from before eviction; 1 evicts on
// the first missed batch. correctedRules selects the trend-aware phase
// classifier instead of the instantaneous one.
func NewRoster(graceTicks int, correctedRules bool) *Roster {
	if graceTicks < 1 {
		graceTicks = 1
	}
	return &Roster{
		aircraft:       make(map[string]*EnhancedAircraft),
		missed:         make(map[string]int),
		plans:          make(map[string]*FlightPlan),
		graceTicks:     graceTicks,
		correctedRules: correctedRules,
	}
}

// ApplySnapshotBatch replaces the roster with the given tick. Entries
// present in the batch are rebuilt from the snapshot, reclassified, and
// re-merged with any stored flight plan. Entries absent from the batch
// accrue a missed count and are dropped once it reaches the grace limit.
// Returns a copy of the resulting roster for broadcast.
func (r *Roster) ApplySnapshotBatch(batch SnapshotBatch, now time.Time) []EnhancedAircraft {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]*EnhancedAircraft, len(batch))
	nextMissed := make(map[string]int)

	for callsign, snap := range batch {
		prev, hasPrev := r.aircraft[callsign]

		var phase Phase
		if r.correctedRules {
			var prevAlt float64
			if hasPrev {
				prevAlt = prev.Altitude
			}
			phase = ClassifyTrend(snap, prevAlt, hasPrev)
		} else {
			phase = Classify(snap)
		}

		entry := &EnhancedAircraft{
			Callsign:    callsign,
			Pilot:       snap.PlayerName,
			Aircraft:    snap.AircraftType,
			Altitude:    snap.Altitude,
			Speed:       snap.Speed,
			GroundSpeed: snap.GroundSpeed,
			Heading:     snap.Heading,
			Position:    snap.Position,
			Wind:        snap.Wind,
			IsOnGround:  snap.IsOnGround,
			Phase:       phase,
			LastUpdate:  now,
		}
		if plan, ok := r.plans[callsign]; ok {
			entry.FlightPlan = plan
			entry.Route = plan.RouteSummary()
		}
		next[callsign] = entry
	}

	// Carry over aircraft the batch skipped, up to the grace limit.
	for callsign, entry := range r.aircraft {
		if _, present := next[callsign]; present {
			continue
		}
		count := r.missed[callsign] + 1
		if count >= r.graceTicks {
			continue
		}
		next[callsign] = entry
		nextMissed[callsign] = count
	}

	r.aircraft = next
	r.missed = nextMissed
	return r.allLocked()
}

// ApplyFlightPlan stores the plan in the side table and merges it into
// the matching roster entry if one exists. A plan for an unknown
// callsign never creates a roster entry; it waits for the aircraft to
// appear in a batch. Returns true when a live entry was updated.
func (r *Roster) ApplyFlightPlan(plan FlightPlan) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := plan
	r.plans[plan.Callsign] = &stored

	entry, ok := r.aircraft[plan.Callsign]
	if !ok {
		return false
	}
	entry.FlightPlan = &stored
	entry.Route = stored.RouteSummary()
	return true
}

// GetAll returns a copy of every roster entry.
func (r *Roster) GetAll() []EnhancedAircraft {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allLocked()
}

// GetByCallsign returns a copy of one entry, reporting whether it exists.
func (r *Roster) GetByCallsign(callsign string) (EnhancedAircraft, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.aircraft[callsign]
	if !ok {
		return EnhancedAircraft{}, false
	}
	return cloneAircraft(entry), true
}

// Len returns the current roster size.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.aircraft)
}

func (r *Roster) allLocked() []EnhancedAircraft {
	out := make([]EnhancedAircraft, 0, len(r.aircraft))
	for _, entry := range r.aircraft {
		out = append(out, cloneAircraft(entry))
	}
	return out
}

func cloneAircraft(a *EnhancedAircraft) EnhancedAircraft {
	c := *a
	if a.FlightPlan != nil {
		plan := *a.FlightPlan
		c.FlightPlan = &plan
	}
	return c
}
