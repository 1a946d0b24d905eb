package constants

// Read-side queries for position_history. Placeholders are written as "?"
// and rebound for the active driver with sqlx.Rebind.
const (
	GetPositionHistory = `
	SELECT driver_number, full_name, position, date
	FROM position_history
	WHERE driver_number = ? AND session_key = ?
	ORDER BY date ASC, id ASC
	`

	GetDriversWithPositionData = `
	SELECT DISTINCT driver_number, full_name
	FROM position_history
	WHERE session_key = ?
	ORDER BY full_name ASC, driver_number ASC
	`

	// A driver can hold several rows at its latest instant only if two
	// positions were reported for the same date; the repository keeps the
	// most recently written one.
	GetLatestPositionPerDriver = `
	SELECT p.id, p.session_key, p.driver_number, p.full_name, p.team_name, p.position, p.date
	FROM position_history p
	JOIN (
		SELECT driver_number, MAX(date) AS max_date
		FROM position_history
		WHERE session_key = ?
		GROUP BY driver_number
	) latest ON latest.driver_number = p.driver_number AND latest.max_date = p.date
	WHERE p.session_key = ?
	ORDER BY p.position ASC, p.driver_number ASC
	`
)
