package dtos

import (
	"strings"
	"time"
)

// Session is one entry of the upstream /sessions catalog.
type Session struct {
	SessionKey  int        `json:"session_key"`
	SessionType string     `json:"session_type"`
	SessionName string     `json:"session_name"`
	MeetingKey  int        `json:"meeting_key"`
	DateStart   time.Time  `json:"date_start"`
	DateEnd     *time.Time `json:"date_end"`
}

// Driver is participant metadata for one session (/drivers).
type Driver struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

// DisplayName prefers full_name and falls back to first + last name.
func (d Driver) DisplayName() string {
	if d.FullName != "" {
		return d.FullName
	}
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// RawPosition is one row of the upstream /position snapshot.
type RawPosition struct {
	SessionKey   int       `json:"session_key"`
	MeetingKey   int       `json:"meeting_key"`
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
}

// CarData is one telemetry sample of the upstream /car_data endpoint.
type CarData struct {
	SessionKey   int       `json:"session_key"`
	DriverNumber int       `json:"driver_number"`
	Speed        int       `json:"speed"`
	RPM          int       `json:"rpm"`
	NGear        int       `json:"n_gear"`
	Throttle     int       `json:"throttle"`
	Brake        int       `json:"brake"`
	DRS          int       `json:"drs"`
	Date         time.Time `json:"date"`
}
