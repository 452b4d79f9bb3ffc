package handlers

import (
	"net/http"

	"ride-pool/pkg/auth"
)

func (h *Handler) RequestToJoin(w http.ResponseWriter, r *http.Request, rideID string) {
	req, err := h.lifecycle.RequestToJoin(r.Context(), auth.CallerID(r.Context()), rideID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request, rideID string) {
	reqs, err := h.lifecycle.ListRequests(r.Context(), auth.CallerID(r.Context()), rideID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *Handler) FetchOwnRequest(w http.ResponseWriter, r *http.Request, rideID string) {
	req, err := h.lifecycle.FetchOwnRequest(r.Context(), auth.CallerID(r.Context()), rideID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request, rideID, requestID string) {
	if err := h.lifecycle.Approve(r.Context(), auth.CallerID(r.Context()), rideID, requestID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) WithdrawRequest(w http.ResponseWriter, r *http.Request, rideID, requestID string) {
	if err := h.lifecycle.Withdraw(r.Context(), auth.CallerID(r.Context()), rideID, requestID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
