package constants

// Background job names, used as metric labels and log components.
const (
	JobPositionSync = "position_sync"
)
