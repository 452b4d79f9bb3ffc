package handlers

import (
	"net/http"
	"strings"

	"ride-pool/pkg/auth"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request, rideID string) {
	var body sendMessageRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "message text is empty")
		return
	}

	senderName := ""
	if claims, ok := auth.GetClaims(r.Context()); ok {
		senderName = claims.Name
	}

	msg, err := h.chat.SendMessage(r.Context(), auth.CallerID(r.Context()), senderName, rideID, body.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

type reportMessageRequest struct {
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

func (h *Handler) ReportMessage(w http.ResponseWriter, r *http.Request, rideID string) {
	var body reportMessageRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chat.ReportMessage(r.Context(), auth.CallerID(r.Context()), rideID, body.MessageID, body.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reported"})
}

type blockRequest struct {
	BlockedID string `json:"blocked_id"`
	Reason    string `json:"reason"`
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	var body blockRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.blocks.Block(r.Context(), auth.CallerID(r.Context()), body.BlockedID, body.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "blocked"})
}
