package traffic

import (
	"encoding/json"
	"fmt"
)

// Frame tags used by the ATC24 feed. The EVENT_ variants carry the same
// payload as their plain counterparts and are folded together on decode.
const (
	tagAircraftData      = "ACFT_DATA"
	tagEventAircraftData = "EVENT_ACFT_DATA"
	tagFlightPlan        = "FLIGHT_PLAN"
	tagEventFlightPlan   = "EVENT_FLIGHT_PLAN"
	tagControllers       = "CONTROLLERS"
)

// FeedEventKind identifies which payload a decoded frame carried.
type FeedEventKind int

const (
	FeedAircraftBatch FeedEventKind = iota
	FeedFlightPlan
	FeedControllers
)

// FeedEvent is a decoded feed frame. Exactly one payload field is set,
// selected by Kind.
type FeedEvent struct {
	Kind        FeedEventKind
	Batch       SnapshotBatch
	Plan        *FlightPlan
	Controllers []ControllerPosition
}

// envelope is the {t, d} wrapper every feed frame uses.
type envelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d"`
}

// DecodeFrame parses one raw feed frame into a FeedEvent. Frames with an
// unknown tag or a payload that does not match the tag's schema return an
// error; callers drop them and keep reading.
func DecodeFrame(data []byte) (*FeedEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse frame envelope: %w", err)
	}

	switch env.T {
	case tagAircraftData, tagEventAircraftData:
		var batch SnapshotBatch
		if err := json.Unmarshal(env.D, &batch); err != nil {
			return nil, fmt.Errorf("failed to parse aircraft batch: %w", err)
		}
		return &FeedEvent{Kind: FeedAircraftBatch, Batch: batch}, nil

	case tagFlightPlan, tagEventFlightPlan:
		var plan FlightPlan
		if err := json.Unmarshal(env.D, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse flight plan: %w", err)
		}
		if plan.Callsign == "" {
			return nil, fmt.Errorf("flight plan frame missing callsign")
		}
		return &FeedEvent{Kind: FeedFlightPlan, Plan: &plan}, nil

	case tagControllers:
		var controllers []ControllerPosition
		if err := json.Unmarshal(env.D, &controllers); err != nil {
			return nil, fmt.Errorf("failed to parse controllers: %w", err)
		}
		return &FeedEvent{Kind: FeedControllers, Controllers: controllers}, nil

	default:
		return nil, fmt.Errorf("unknown frame tag: %q", env.T)
	}
}
