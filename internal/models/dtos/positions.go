package dtos

import "time"

// CurrentPosition is one row of GET /api/current_positions.
type CurrentPosition struct {
	DriverNumber int    `json:"driver_number" db:"driver_number"`
	FullName     string `json:"full_name" db:"full_name"`
	TeamName     string `json:"team_name" db:"team_name"`
	Position     int    `json:"position" db:"position"`
}

// PositionPoint is one chart point of GET /api/positions/history/{driverNumber}.
type PositionPoint struct {
	DriverNumber int       `json:"driver_number" db:"driver_number"`
	FullName     string    `json:"full_name" db:"full_name"`
	Position     int       `json:"position" db:"position"`
	Date         time.Time `json:"date" db:"date"`
}

// DriverSummary populates the dashboard driver selector.
type DriverSummary struct {
	DriverNumber int    `json:"driver_number" db:"driver_number"`
	FullName     string `json:"full_name" db:"full_name"`
}

// DriverSpeed is the latest speed sample for a driver.
type DriverSpeed struct {
	DriverNumber int       `json:"driver_number"`
	FullName     string    `json:"full_name"`
	Speed        int       `json:"speed"`
	Date         time.Time `json:"date"`
}

// MessageResponse is the body of every non-2xx response.
type MessageResponse struct {
	Message string `json:"message"`
}

// SyncStatus describes the position sync job for GET /api/jobs/status.
type SyncStatus struct {
	Job            string     `json:"job"`
	Mode           string     `json:"mode"`
	Interval       string     `json:"interval"`
	Running        bool       `json:"running"`
	LastRunID      string     `json:"last_run_id,omitempty"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	LastDurationMs int64      `json:"last_duration_ms"`
	LastSessionKey int        `json:"last_session_key,omitempty"`
	LastInserted   int        `json:"last_inserted"`
	LastError      string     `json:"last_error,omitempty"`
	TotalRuns      int64      `json:"total_runs"`
	TotalSkipped   int64      `json:"total_skipped"`
	TotalInserted  int64      `json:"total_inserted"`
	StoredRows     int64      `json:"stored_rows"`
}
