package constants

// Messages returned in {"message": ...} bodies by the API.
const (
	MsgNoActiveSession = "No active race session found."
	MsgDriverNotFound  = "No data found for this driver in the current session."
	MsgInvalidDriver   = "Driver number must be a positive integer."
	MsgInternalError   = "Internal server error"
	MsgTooManyRequests = "Too many requests"
	MsgNotFound        = "Not found"
)
