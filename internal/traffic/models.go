package traffic

import (
	"fmt"
	"time"
)

// Phase is the coarse flight phase derived from a kinematic snapshot.
type Phase string

const (
	PhaseTaxi     Phase = "taxi"
	PhaseTakeoff  Phase = "takeoff"
	PhaseClimb    Phase = "climb"
	PhaseCruise   Phase = "cruise"
	PhaseDescent  Phase = "descent"
	PhaseApproach Phase = "approach"
	PhaseLanding  Phase = "landing"
)

// Position is a planar ATC24 map coordinate, not a geodetic fix.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RawAircraftSnapshot is one aircraft's kinematic record as it arrives
// on the feed. Altitude is feet, speeds are knots.
type RawAircraftSnapshot struct {
	Heading      float64  `json:"heading"`
	PlayerName   string   `json:"playerName"`
	Altitude     float64  `json:"altitude"`
	AircraftType string   `json:"aircraftType"`
	Position     Position `json:"position"`
	Speed        float64  `json:"speed"`
	Wind         string   `json:"wind"`
	IsOnGround   bool     `json:"isOnGround"`
	GroundSpeed  float64  `json:"groundSpeed"`
}

// SnapshotBatch is a full-roster tick keyed by callsign. Absence from a
// batch means the aircraft is gone from the simulation, not merely idle.
type SnapshotBatch map[string]RawAircraftSnapshot

// FlightPlan mirrors the feed's flight plan record. Field names follow
// the ATC24 wire format.
type FlightPlan struct {
	RobloxName   string `json:"robloxName"`
	Callsign     string `json:"callsign"`
	RealCallsign string `json:"realcallsign,omitempty"`
	Aircraft     string `json:"aircraft"`
	FlightRules  string `json:"flightrules"`
	Departing    string `json:"departing"`
	Arriving     string `json:"arriving"`
	Route        string `json:"route"`
	FlightLevel  string `json:"flightlevel"`
}

// RouteSummary renders the plan as "DEP → ARR" for display.
func (p *FlightPlan) RouteSummary() string {
	return fmt.Sprintf("%s → %s", p.Departing, p.Arriving)
}

// ControllerPosition is one staffed or claimable ATC position.
type ControllerPosition struct {
	Holder    *string  `json:"holder"`
	Claimable bool     `json:"claimable"`
	Airport   string   `json:"airport"`
	Position  string   `json:"position"`
	Queue     []string `json:"queue"`
}

// EnhancedAircraft is the roster entry served to clients: the latest
// snapshot fields plus derived phase and any merged flight plan.
type EnhancedAircraft struct {
	Callsign    string      `json:"callsign"`
	Pilot       string      `json:"pilot"`
	Aircraft    string      `json:"aircraft"`
	Altitude    float64     `json:"altitude"`
	Speed       float64     `json:"speed"`
	GroundSpeed float64     `json:"groundSpeed"`
	Heading     float64     `json:"heading"`
	Position    Position    `json:"position"`
	Wind        string      `json:"wind"`
	IsOnGround  bool        `json:"isOnGround"`
	Phase       Phase       `json:"phase"`
	Route       string      `json:"route,omitempty"`
	FlightPlan  *FlightPlan `json:"flightPlan,omitempty"`
	LastUpdate  time.Time   `json:"lastUpdate"`
}

// Status summarizes the feed pipeline for the status endpoint.
type Status struct {
	Connected        bool      `json:"connected"`
	AircraftCount    int       `json:"aircraftCount"`
	ControllersCount int       `json:"controllersCount"`
	LastUpdate       time.Time `json:"lastUpdate"`
}
