package api

import (
	"context"
	"net/http"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/models/dtos"
)

// JobStatusReader reports the state of a background job.
type JobStatusReader interface {
	Status(ctx context.Context) dtos.SyncStatus
}

// JobsHandler exposes background job state.
type JobsHandler struct {
	positionSync JobStatusReader
}

func NewJobsHandler(positionSync JobStatusReader) *JobsHandler {
	return &JobsHandler{positionSync: positionSync}
}

// Status handles GET /api/jobs/status
func (h *JobsHandler) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondJSON(w, http.StatusOK, []dtos.SyncStatus{h.positionSync.Status(r.Context())})
	}
}
