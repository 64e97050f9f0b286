package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/skyharbor/flightdeck/internal/companion"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

// Open opens (or creates) the companion database. Use ":memory:" for a
// process-lifetime store.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases from silently
	// splitting into independent stores per pooled connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

// CompanionStorage stores companion records in SQLite.
type CompanionStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewCompanionStorage creates the storage, its tables, and the default
// seed records when the tables are empty.
func NewCompanionStorage(db *sql.DB, logger *logger.Logger) (*CompanionStorage, error) {
	storage := &CompanionStorage{
		db:     db,
		logger: logger.Named("sqlite-companion"),
	}

	if err := storage.initDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize companion storage: %w", err)
	}
	if err := storage.seedDefaults(); err != nil {
		return nil, fmt.Errorf("failed to seed companion storage: %w", err)
	}
	return storage, nil
}

// initDB initializes the database tables
func (s *CompanionStorage) initDB() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS announcements (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			content TEXT NOT NULL,
			phase TEXT NOT NULL,
			duration TEXT NOT NULL,
			audio_url TEXT,
			icon TEXT NOT NULL,
			icon_color TEXT NOT NULL,
			is_favorite BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_announcements_phase ON announcements(phase)`,
		`CREATE TABLE IF NOT EXISTS checklists (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			phase TEXT NOT NULL,
			items TEXT NOT NULL,
			completed_count INTEGER NOT NULL DEFAULT 0,
			total_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			flight_number TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS charts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			airport_code TEXT NOT NULL,
			chart_type TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_url TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_charts_airport ON charts(airport_code)`,
		`CREATE TABLE IF NOT EXISTS sids (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			airport TEXT NOT NULL,
			runway TEXT NOT NULL,
			description TEXT NOT NULL,
			procedure TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sids_airport ON sids(airport)`,
		`CREATE TABLE IF NOT EXISTS flight_status (
			id TEXT PRIMARY KEY,
			flight_number TEXT NOT NULL,
			route TEXT NOT NULL,
			aircraft TEXT NOT NULL,
			status TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS weight_balance (
			id TEXT PRIMARY KEY,
			aircraft_type TEXT NOT NULL,
			max_takeoff_weight REAL NOT NULL,
			max_landing_weight REAL NOT NULL,
			empty_weight REAL NOT NULL,
			max_fuel_capacity REAL NOT NULL,
			max_passengers INTEGER NOT NULL,
			avg_passenger_weight REAL NOT NULL DEFAULT 170,
			cargo_bay_capacity REAL NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weight_balance_type ON weight_balance(aircraft_type)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *CompanionStorage) Close() error {
	return s.db.Close()
}

// Announcements

func (s *CompanionStorage) GetAnnouncements() ([]*companion.Announcement, error) {
	return s.queryAnnouncements(`SELECT id, title, description, content, phase, duration,
		COALESCE(audio_url, ''), icon, icon_color, is_favorite, created_at
		FROM announcements ORDER BY created_at`)
}

func (s *CompanionStorage) GetAnnouncementsByPhase(phase string) ([]*companion.Announcement, error) {
	return s.queryAnnouncements(`SELECT id, title, description, content, phase, duration,
		COALESCE(audio_url, ''), icon, icon_color, is_favorite, created_at
		FROM announcements WHERE phase = ? ORDER BY created_at`, phase)
}

func (s *CompanionStorage) queryAnnouncements(query string, args ...any) ([]*companion.Announcement, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()

	var out []*companion.Announcement
	for rows.Next() {
		var a companion.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.Phase,
			&a.Duration, &a.AudioURL, &a.Icon, &a.IconColor, &a.IsFavorite, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *CompanionStorage) GetAnnouncement(id string) (*companion.Announcement, error) {
	var a companion.Announcement
	err := s.db.QueryRow(`SELECT id, title, description, content, phase, duration,
		COALESCE(audio_url, ''), icon, icon_color, is_favorite, created_at
		FROM announcements WHERE id = ?`, id).
		Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.Phase,
			&a.Duration, &a.AudioURL, &a.Icon, &a.IconColor, &a.IsFavorite, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, companion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

func (s *CompanionStorage) CreateAnnouncement(a *companion.Announcement) (*companion.Announcement, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO announcements
		(id, title, description, content, phase, duration, audio_url, icon, icon_color, is_favorite, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Description, a.Content, a.Phase, a.Duration,
		nullableString(a.AudioURL), a.Icon, a.IconColor, a.IsFavorite, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert announcement: %w", err)
	}
	return a, nil
}

func (s *CompanionStorage) UpdateAnnouncement(a *companion.Announcement) (*companion.Announcement, error) {
	res, err := s.db.Exec(`UPDATE announcements SET
		title = ?, description = ?, content = ?, phase = ?, duration = ?,
		audio_url = ?, icon = ?, icon_color = ?, is_favorite = ?
		WHERE id = ?`,
		a.Title, a.Description, a.Content, a.Phase, a.Duration,
		nullableString(a.AudioURL), a.Icon, a.IconColor, a.IsFavorite, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, companion.ErrNotFound
	}
	return a, nil
}

func (s *CompanionStorage) DeleteAnnouncement(id string) error {
	return s.deleteByID("announcements", id)
}

// Checklists

func (s *CompanionStorage) GetChecklists() ([]*companion.Checklist, error) {
	rows, err := s.db.Query(`SELECT id, title, phase, items, completed_count, total_count, created_at
		FROM checklists ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklists: %w", err)
	}
	defer rows.Close()

	var out []*companion.Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CompanionStorage) GetChecklist(id string) (*companion.Checklist, error) {
	row := s.db.QueryRow(`SELECT id, title, phase, items, completed_count, total_count, created_at
		FROM checklists WHERE id = ?`, id)
	c, err := scanChecklist(row)
	if err == sql.ErrNoRows {
		return nil, companion.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChecklist(row rowScanner) (*companion.Checklist, error) {
	var c companion.Checklist
	var itemsJSON string
	if err := row.Scan(&c.ID, &c.Title, &c.Phase, &itemsJSON,
		&c.CompletedCount, &c.TotalCount, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan checklist: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &c.Items); err != nil {
		return nil, fmt.Errorf("failed to decode checklist items: %w", err)
	}
	return &c, nil
}

func (s *CompanionStorage) CreateChecklist(c *companion.Checklist) (*companion.Checklist, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.TotalCount = len(c.Items)
	c.CompletedCount = countCompleted(c.Items)

	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checklist items: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO checklists
		(id, title, phase, items, completed_count, total_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Phase, string(itemsJSON), c.CompletedCount, c.TotalCount, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert checklist: %w", err)
	}
	return c, nil
}

func (s *CompanionStorage) UpdateChecklist(c *companion.Checklist) (*companion.Checklist, error) {
	c.TotalCount = len(c.Items)
	c.CompletedCount = countCompleted(c.Items)

	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checklist items: %w", err)
	}
	res, err := s.db.Exec(`UPDATE checklists SET
		title = ?, phase = ?, items = ?, completed_count = ?, total_count = ?
		WHERE id = ?`,
		c.Title, c.Phase, string(itemsJSON), c.CompletedCount, c.TotalCount, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, companion.ErrNotFound
	}
	return c, nil
}

func (s *CompanionStorage) DeleteChecklist(id string) error {
	return s.deleteByID("checklists", id)
}

func countCompleted(items []companion.ChecklistItem) int {
	n := 0
	for _, item := range items {
		if item.Completed {
			n++
		}
	}
	return n
}

// Notes

func (s *CompanionStorage) GetNotes() ([]*companion.Note, error) {
	rows, err := s.db.Query(`SELECT id, title, content, COALESCE(flight_number, ''), created_at, updated_at
		FROM notes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var out []*companion.Note
	for rows.Next() {
		var n companion.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.FlightNumber, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *CompanionStorage) GetNote(id string) (*companion.Note, error) {
	var n companion.Note
	err := s.db.QueryRow(`SELECT id, title, content, COALESCE(flight_number, ''), created_at, updated_at
		FROM notes WHERE id = ?`, id).
		Scan(&n.ID, &n.Title, &n.Content, &n.FlightNumber, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, companion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &n, nil
}

func (s *CompanionStorage) CreateNote(n *companion.Note) (*companion.Note, error) {
	n.ID = uuid.NewString()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := s.db.Exec(`INSERT INTO notes (id, title, content, flight_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, nullableString(n.FlightNumber), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	return n, nil
}

func (s *CompanionStorage) UpdateNote(n *companion.Note) (*companion.Note, error) {
	n.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`UPDATE notes SET title = ?, content = ?, flight_number = ?, updated_at = ?
		WHERE id = ?`,
		n.Title, n.Content, nullableString(n.FlightNumber), n.UpdatedAt, n.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, companion.ErrNotFound
	}
	return n, nil
}

func (s *CompanionStorage) DeleteNote(id string) error {
	return s.deleteByID("notes", id)
}

// Charts

func (s *CompanionStorage) GetCharts() ([]*companion.Chart, error) {
	return s.queryCharts(`SELECT id, title, airport_code, chart_type, file_name, file_url, created_at
		FROM charts ORDER BY airport_code, title`)
}

func (s *CompanionStorage) GetChartsByAirport(airportCode string) ([]*companion.Chart, error) {
	return s.queryCharts(`SELECT id, title, airport_code, chart_type, file_name, file_url, created_at
		FROM charts WHERE airport_code = ? ORDER BY title`, airportCode)
}

func (s *CompanionStorage) queryCharts(query string, args ...any) ([]*companion.Chart, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query charts: %w", err)
	}
	defer rows.Close()

	var out []*companion.Chart
	for rows.Next() {
		var c companion.Chart
		if err := rows.Scan(&c.ID, &c.Title, &c.AirportCode, &c.ChartType,
			&c.FileName, &c.FileURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chart: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *CompanionStorage) CreateChart(c *companion.Chart) (*companion.Chart, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO charts
		(id, title, airport_code, chart_type, file_name, file_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.AirportCode, c.ChartType, c.FileName, c.FileURL, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chart: %w", err)
	}
	return c, nil
}

func (s *CompanionStorage) DeleteChart(id string) error {
	return s.deleteByID("charts", id)
}

// SIDs

func (s *CompanionStorage) GetSIDs() ([]*companion.SID, error) {
	return s.querySIDs(`SELECT id, name, airport, runway, description, procedure, created_at
		FROM sids ORDER BY airport, name`)
}

func (s *CompanionStorage) GetSIDsByAirport(airport string) ([]*companion.SID, error) {
	return s.querySIDs(`SELECT id, name, airport, runway, description, procedure, created_at
		FROM sids WHERE airport = ? ORDER BY name`, airport)
}

// SearchSIDs matches the query case-insensitively against the SID
// name, airport, and runway.
func (s *CompanionStorage) SearchSIDs(query string) ([]*companion.SID, error) {
	pattern := "%" + query + "%"
	return s.querySIDs(`SELECT id, name, airport, runway, description, procedure, created_at
		FROM sids WHERE name LIKE ? OR airport LIKE ? OR runway LIKE ?
		ORDER BY airport, name`, pattern, pattern, pattern)
}

func (s *CompanionStorage) querySIDs(query string, args ...any) ([]*companion.SID, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sids: %w", err)
	}
	defer rows.Close()

	var out []*companion.SID
	for rows.Next() {
		var sid companion.SID
		var procedureJSON string
		if err := rows.Scan(&sid.ID, &sid.Name, &sid.Airport, &sid.Runway,
			&sid.Description, &procedureJSON, &sid.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sid: %w", err)
		}
		if err := json.Unmarshal([]byte(procedureJSON), &sid.Procedure); err != nil {
			return nil, fmt.Errorf("failed to decode sid procedure: %w", err)
		}
		out = append(out, &sid)
	}
	return out, rows.Err()
}

func (s *CompanionStorage) CreateSID(sid *companion.SID) (*companion.SID, error) {
	sid.ID = uuid.NewString()
	sid.CreatedAt = time.Now().UTC()

	procedureJSON, err := json.Marshal(sid.Procedure)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sid procedure: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO sids
		(id, name, airport, runway, description, procedure, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sid.ID, sid.Name, sid.Airport, sid.Runway, sid.Description,
		string(procedureJSON), sid.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sid: %w", err)
	}
	return sid, nil
}

func (s *CompanionStorage) DeleteSID(id string) error {
	return s.deleteByID("sids", id)
}

// Flight status

func (s *CompanionStorage) GetCurrentFlightStatus() (*companion.FlightStatus, error) {
	var fs companion.FlightStatus
	err := s.db.QueryRow(`SELECT id, flight_number, route, aircraft, status, is_active, updated_at
		FROM flight_status WHERE is_active = 1 ORDER BY updated_at DESC LIMIT 1`).
		Scan(&fs.ID, &fs.FlightNumber, &fs.Route, &fs.Aircraft, &fs.Status, &fs.IsActive, &fs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, companion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight status: %w", err)
	}
	return &fs, nil
}

// SetFlightStatus deactivates any existing status and stores the given
// one as active.
func (s *CompanionStorage) SetFlightStatus(fs *companion.FlightStatus) (*companion.FlightStatus, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE flight_status SET is_active = 0 WHERE is_active = 1`); err != nil {
		return nil, fmt.Errorf("failed to deactivate flight status: %w", err)
	}

	fs.ID = uuid.NewString()
	fs.IsActive = true
	fs.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(`INSERT INTO flight_status
		(id, flight_number, route, aircraft, status, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fs.ID, fs.FlightNumber, fs.Route, fs.Aircraft, fs.Status, fs.IsActive, fs.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert flight status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit flight status: %w", err)
	}
	return fs, nil
}

// Weight and balance

func (s *CompanionStorage) GetWeightBalance(aircraftType string) (*companion.WeightBalance, error) {
	var wb companion.WeightBalance
	err := s.db.QueryRow(`SELECT id, aircraft_type, max_takeoff_weight, max_landing_weight,
		empty_weight, max_fuel_capacity, max_passengers, avg_passenger_weight, cargo_bay_capacity, created_at
		FROM weight_balance WHERE aircraft_type = ? ORDER BY created_at DESC LIMIT 1`, aircraftType).
		Scan(&wb.ID, &wb.AircraftType, &wb.MaxTakeoffWeight, &wb.MaxLandingWeight,
			&wb.EmptyWeight, &wb.MaxFuelCapacity, &wb.MaxPassengers, &wb.AvgPassengerWeight,
			&wb.CargoBayCapacity, &wb.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, companion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weight balance: %w", err)
	}
	return &wb, nil
}

func (s *CompanionStorage) CreateWeightBalance(wb *companion.WeightBalance) (*companion.WeightBalance, error) {
	wb.ID = uuid.NewString()
	wb.CreatedAt = time.Now().UTC()
	if wb.AvgPassengerWeight == 0 {
		wb.AvgPassengerWeight = 170
	}
	_, err := s.db.Exec(`INSERT INTO weight_balance
		(id, aircraft_type, max_takeoff_weight, max_landing_weight, empty_weight,
		max_fuel_capacity, max_passengers, avg_passenger_weight, cargo_bay_capacity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wb.ID, wb.AircraftType, wb.MaxTakeoffWeight, wb.MaxLandingWeight, wb.EmptyWeight,
		wb.MaxFuelCapacity, wb.MaxPassengers, wb.AvgPassengerWeight, wb.CargoBayCapacity, wb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert weight balance: %w", err)
	}
	return wb, nil
}

func (s *CompanionStorage) deleteByID(table, id string) error {
	res, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return companion.ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
