package constants

// Upstream provider error codes.
const (
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeBadStatus         = "BAD_STATUS"
	ErrCodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeCircuitOpen       = "CIRCUIT_OPEN"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:      "Unable to reach the telemetry API",
	ErrCodeRateLimited:       "Telemetry API rate limit exceeded. Please try again later",
	ErrCodeBadStatus:         "Telemetry API returned an unexpected status",
	ErrCodeResourceNotFound:  "The requested telemetry resource does not exist",
	ErrCodeInvalidDataFormat: "The telemetry API returned data in an unexpected format",
	ErrCodeCircuitOpen:       "Telemetry API calls are suspended after repeated failures",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
