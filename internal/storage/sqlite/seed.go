package sqlite

import (
	"fmt"

	"github.com/skyharbor/flightdeck/internal/companion"
)

// seedDefaults inserts the starter announcements, checklists, charts,
// and flight status on first run. Tables that already hold data are
// left untouched.
func (s *CompanionStorage) seedDefaults() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM announcements`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count announcements: %w", err)
	}
	if count == 0 {
		for _, a := range defaultAnnouncements() {
			if _, err := s.CreateAnnouncement(a); err != nil {
				return err
			}
		}
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM checklists`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count checklists: %w", err)
	}
	if count == 0 {
		for _, c := range defaultChecklists() {
			if _, err := s.CreateChecklist(c); err != nil {
				return err
			}
		}
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM charts`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count charts: %w", err)
	}
	if count == 0 {
		for _, c := range defaultCharts() {
			if _, err := s.CreateChart(c); err != nil {
				return err
			}
		}
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM flight_status`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count flight status: %w", err)
	}
	if count == 0 {
		if _, err := s.SetFlightStatus(&companion.FlightStatus{
			FlightNumber: "AA1234",
			Route:        "LAX → JFK",
			Aircraft:     "Boeing 737-800",
			Status:       "ACTIVE",
		}); err != nil {
			return err
		}
	}

	s.logger.Debug("Companion storage seeded")
	return nil
}

func defaultAnnouncements() []*companion.Announcement {
	return []*companion.Announcement{
		{
			Title:       "Welcome Aboard",
			Description: "Standard greeting",
			Content:     "Good morning, ladies and gentlemen, and welcome aboard American Airlines flight 1234...",
			Phase:       "boarding",
			Duration:    "1:45",
			Icon:        "fas fa-microphone",
			IconColor:   "aviation-blue",
		},
		{
			Title:       "Safety Demo",
			Description: "Pre-takeoff safety",
			Content:     "Your attention please for our safety demonstration. Please locate the nearest exit...",
			Phase:       "boarding",
			Duration:    "3:20",
			Icon:        "fas fa-shield-alt",
			IconColor:   "warning-orange",
			IsFavorite:  true,
		},
		{
			Title:       "Seatbelt Sign",
			Description: "Seatbelt reminder",
			Content:     "Ladies and gentlemen, the captain has turned on the seatbelt sign...",
			Phase:       "boarding",
			Duration:    "0:35",
			Icon:        "fas fa-user-lock",
			IconColor:   "caution-yellow",
		},
	}
}

func defaultCharts() []*companion.Chart {
	return []*companion.Chart{
		{
			Title:       "IRFD Ground Chart",
			AirportCode: "IRFD",
			ChartType:   "Ground Chart",
			FileName:    "IRFD_CHART_TYPE_GROUND.svg",
			FileURL:     "/attached_assets/charts/IRFD_CHART_TYPE_GROUND.svg",
		},
	}
}

func defaultChecklists() []*companion.Checklist {
	return []*companion.Checklist{
		{
			Title: "Pre-flight Checklist",
			Phase: "preflight",
			Items: []companion.ChecklistItem{
				{ID: "1", Text: "Aircraft documents checked"},
				{ID: "2", Text: "Weather briefing completed"},
				{ID: "3", Text: "Flight plan filed"},
				{ID: "4", Text: "Aircraft inspection complete"},
			},
		},
		{
			Title: "Takeoff Checklist",
			Phase: "takeoff",
			Items: []companion.ChecklistItem{
				{ID: "1", Text: "Controls checked", Completed: true},
				{ID: "2", Text: "Engines at takeoff power", Completed: true},
				{ID: "3", Text: "Runway clear", Completed: true},
				{ID: "4", Text: "Takeoff clearance received", Completed: true},
			},
		},
		{
			Title: "Landing Checklist",
			Phase: "landing",
			Items: []companion.ChecklistItem{
				{ID: "1", Text: "Landing gear down"},
				{ID: "2", Text: "Flaps configured"},
				{ID: "3", Text: "Landing clearance received"},
				{ID: "4", Text: "Runway in sight"},
			},
		},
	}
}
