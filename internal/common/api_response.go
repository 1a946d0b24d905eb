package common

import (
	"net/http"

	"github.com/goccy/go-json"

	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/models/dtos"
)

// RespondJSON writes body as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, code int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
		http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(data, '\n'))
}

// RespondMessage sends the {"message": ...} body used by every error path.
func RespondMessage(w http.ResponseWriter, code int, message string) {
	RespondJSON(w, code, dtos.MessageResponse{Message: message})
}
