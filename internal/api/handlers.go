package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/constants"
	reqctx "infinite-experiment/paddock/internal/context"
	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/services"
)

// PositionReader serves the position endpoints.
type PositionReader interface {
	CurrentPositions(ctx context.Context) ([]dtos.CurrentPosition, error)
	PositionHistory(ctx context.Context, driverNumber int) ([]dtos.PositionPoint, error)
	DriversWithData(ctx context.Context) ([]dtos.DriverSummary, error)
}

// SpeedReader serves the speed endpoints.
type SpeedReader interface {
	CurrentSpeed(ctx context.Context, driverNumber int) (*dtos.DriverSpeed, error)
	SpeedBoard(ctx context.Context) ([]dtos.DriverSpeed, error)
}

type Handlers struct {
	positions PositionReader
	speeds    SpeedReader
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		positions: deps.Services.Positions,
		speeds:    deps.Services.Speed,
	}
}

// CurrentPositions handles GET /api/current_positions
func (h *Handlers) CurrentPositions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := h.positions.CurrentPositions(r.Context())
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, positions)
	}
}

// PositionHistory handles GET /api/positions/history/{driverNumber}
func (h *Handlers) PositionHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverNumber, ok := driverNumberParam(w, r)
		if !ok {
			return
		}

		history, err := h.positions.PositionHistory(r.Context(), driverNumber)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, history)
	}
}

// DriversWithPositionData handles GET /api/drivers_with_position_data
func (h *Handlers) DriversWithPositionData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := h.positions.DriversWithData(r.Context())
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, drivers)
	}
}

// CurrentSpeed handles GET /api/current_speed/{driverNumber}
func (h *Handlers) CurrentSpeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverNumber, ok := driverNumberParam(w, r)
		if !ok {
			return
		}

		speed, err := h.speeds.CurrentSpeed(r.Context(), driverNumber)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, speed)
	}
}

// CurrentSpeeds handles GET /api/current_speeds
func (h *Handlers) CurrentSpeeds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := h.speeds.SpeedBoard(r.Context())
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, board)
	}
}

func driverNumberParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "driverNumber"))
	if err != nil || n <= 0 {
		common.RespondMessage(w, http.StatusBadRequest, constants.MsgInvalidDriver)
		return 0, false
	}
	return n, true
}

// respondWithError maps service errors to status codes. Anything else is
// logged with its kind and answered with a generic 500.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	switch kind := services.Classify(err); kind {
	case services.ErrNoActiveSession:
		common.RespondMessage(w, http.StatusNotFound, constants.MsgNoActiveSession)
	case services.ErrDriverNotFound:
		common.RespondMessage(w, http.StatusNotFound, constants.MsgDriverNotFound)
	default:
		logging.WithRequest(reqctx.GetRequestID(r.Context()), r.URL.Path).
			Errorw("Request failed", "kind", kind.Error(), "error", err.Error())
		common.RespondMessage(w, http.StatusInternalServerError, constants.MsgInternalError)
	}
}
