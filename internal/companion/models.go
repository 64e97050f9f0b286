// Package companion holds the pilot-facing companion data served
// alongside live traffic: cabin announcements, checklists, notes,
// flight status, and aircraft weight and balance records.
package companion

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Storage lookups for missing records.
var ErrNotFound = errors.New("record not found")

// Announcement is a cabin announcement script tied to a flight phase.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Phase       string    `json:"phase"` // boarding, taxi, takeoff, cruise, descent, landing
	Duration    string    `json:"duration"`
	AudioURL    string    `json:"audioUrl,omitempty"`
	Icon        string    `json:"icon"`
	IconColor   string    `json:"iconColor"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChecklistItem is one line of a checklist.
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Checklist is an ordered set of checklist items for a flight phase.
type Checklist struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Phase          string          `json:"phase"` // preflight, takeoff, cruise, landing, emergency
	Items          []ChecklistItem `json:"items"`
	CompletedCount int             `json:"completedCount"`
	TotalCount     int             `json:"totalCount"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Note is a free-form pilot note, optionally tied to a flight number.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	FlightNumber string    `json:"flightNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Chart is a reference to an airport chart document, either a bundled
// asset or an external URL.
type Chart struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AirportCode string    `json:"airportCode"`
	ChartType   string    `json:"chartType"` // Ground Chart, SID Chart, STAR Chart, Approach Chart
	FileName    string    `json:"fileName"`
	FileURL     string    `json:"fileUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SID is a standard instrument departure procedure for one runway.
type SID struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Airport     string    `json:"airport"`
	Runway      string    `json:"runway"`
	Description string    `json:"description"`
	Procedure   []string  `json:"procedure"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FlightStatus describes the flight the user is currently operating.
// At most one record is active at a time.
type FlightStatus struct {
	ID           string    `json:"id"`
	FlightNumber string    `json:"flightNumber"`
	Route        string    `json:"route"`
	Aircraft     string    `json:"aircraft"`
	Status       string    `json:"status"`
	IsActive     bool      `json:"isActive"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// WeightBalance holds the loading limits for one aircraft type.
type WeightBalance struct {
	ID                 string    `json:"id"`
	AircraftType       string    `json:"aircraftType"`
	MaxTakeoffWeight   float64   `json:"maxTakeoffWeight"`
	MaxLandingWeight   float64   `json:"maxLandingWeight"`
	EmptyWeight        float64   `json:"emptyWeight"`
	MaxFuelCapacity    float64   `json:"maxFuelCapacity"`
	MaxPassengers      int       `json:"maxPassengers"`
	AvgPassengerWeight float64   `json:"avgPassengerWeight"`
	CargoBayCapacity   float64   `json:"cargoBayCapacity"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Storage is the persistence surface for companion data. Create
// methods assign the record's ID and timestamps; Update methods replace
// the stored record with the given one. Lookups for unknown IDs return
// ErrNotFound.
type Storage interface {
	// Announcements
	GetAnnouncements() ([]*Announcement, error)
	GetAnnouncementsByPhase(phase string) ([]*Announcement, error)
	GetAnnouncement(id string) (*Announcement, error)
	CreateAnnouncement(a *Announcement) (*Announcement, error)
	UpdateAnnouncement(a *Announcement) (*Announcement, error)
	DeleteAnnouncement(id string) error

	// Checklists
	GetChecklists() ([]*Checklist, error)
	GetChecklist(id string) (*Checklist, error)
	CreateChecklist(c *Checklist) (*Checklist, error)
	UpdateChecklist(c *Checklist) (*Checklist, error)
	DeleteChecklist(id string) error

	// Notes
	GetNotes() ([]*Note, error)
	GetNote(id string) (*Note, error)
	CreateNote(n *Note) (*Note, error)
	UpdateNote(n *Note) (*Note, error)
	DeleteNote(id string) error

	// Charts
	GetCharts() ([]*Chart, error)
	GetChartsByAirport(airportCode string) ([]*Chart, error)
	CreateChart(c *Chart) (*Chart, error)
	DeleteChart(id string) error

	// SIDs
	GetSIDs() ([]*SID, error)
	GetSIDsByAirport(airport string) ([]*SID, error)
	SearchSIDs(query string) ([]*SID, error)
	CreateSID(sid *SID) (*SID, error)
	DeleteSID(id string) error

	// Flight status
	GetCurrentFlightStatus() (*FlightStatus, error)
	SetFlightStatus(fs *FlightStatus) (*FlightStatus, error)

	// Weight and balance
	GetWeightBalance(aircraftType string) (*WeightBalance, error)
	CreateWeightBalance(wb *WeightBalance) (*WeightBalance, error)

	// Close releases the underlying database handle.
	Close() error
}
