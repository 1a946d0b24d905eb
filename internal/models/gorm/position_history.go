package gorm

import "time"

// PositionHistory is one observed position of one driver at one instant.
// Rows are append-only; driver name and team are copied at write time so
// history survives upstream metadata changes.
type PositionHistory struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	SessionKey   int       `gorm:"column:session_key;not null;index:idx_position_history_session,priority:1"`
	DriverNumber int       `gorm:"column:driver_number;not null;uniqueIndex:idx_position_history_dedup,priority:1;index:idx_position_history_session,priority:2"`
	FullName     string    `gorm:"column:full_name;type:varchar(100);not null"`
	TeamName     string    `gorm:"column:team_name;type:varchar(100);not null"`
	Position     int       `gorm:"column:position;not null;uniqueIndex:idx_position_history_dedup,priority:2"`
	Date         time.Time `gorm:"column:date;not null;uniqueIndex:idx_position_history_dedup,priority:3;index:idx_position_history_session,priority:3"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (PositionHistory) TableName() string {
	return "position_history"
}
