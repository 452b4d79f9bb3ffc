package handlers

import (
	"net/http"
	"time"

	"ride-pool/internal/carpool/domain"
	"ride-pool/internal/carpool/feed"
	"ride-pool/internal/carpool/service"
	"ride-pool/pkg/auth"
	"ride-pool/pkg/logger"
)

// Handler holds the service dependencies behind the HTTP surface.
type Handler struct {
	directory *service.Directory
	lifecycle *service.Lifecycle
	blocks    *service.Blocks
	chat      *service.Chat
	projector *feed.Projector
	log       logger.Logger
}

func New(
	directory *service.Directory,
	lifecycle *service.Lifecycle,
	blocks *service.Blocks,
	chat *service.Chat,
	projector *feed.Projector,
	log logger.Logger,
) *Handler {
	return &Handler{
		directory: directory,
		lifecycle: lifecycle,
		blocks:    blocks,
		chat:      chat,
		projector: projector,
		log:       log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRideRequest struct {
	Route             string    `json:"route"`
	ScheduledAt       time.Time `json:"scheduled_at"`
	SeatsAvailable    int       `json:"seats_available"`
	CarNumber         string    `json:"car_number"`
	CarModel          string    `json:"car_model"`
	StartLocationName string    `json:"start_location_name"`
	EndLocationName   string    `json:"end_location_name"`
	StartLatitude     float64   `json:"start_latitude"`
	StartLongitude    float64   `json:"start_longitude"`
}

func (h *Handler) CreateRide(w http.ResponseWriter, r *http.Request) {
	var body createRideRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ownerName := ""
	if claims, ok := auth.GetClaims(r.Context()); ok {
		ownerName = claims.Name
	}

	attrs := domain.RideAttributes{
		OwnerName:         ownerName,
		Route:             body.Route,
		ScheduledAt:       body.ScheduledAt,
		SeatsAvailable:    body.SeatsAvailable,
		CarNumber:         body.CarNumber,
		CarModel:          body.CarModel,
		StartLocationName: body.StartLocationName,
		EndLocationName:   body.EndLocationName,
		StartLatitude:     body.StartLatitude,
		StartLongitude:    body.StartLongitude,
	}

	ride, err := h.directory.CreateRide(r.Context(), auth.CallerID(r.Context()), attrs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ride)
}

func (h *Handler) ListRides(w http.ResponseWriter, r *http.Request) {
	rides, err := h.directory.ListRides(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rides)
}

func (h *Handler) DeleteRide(w http.ResponseWriter, r *http.Request, rideID string) {
	if err := h.directory.DeleteRide(r.Context(), auth.CallerID(r.Context()), rideID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
