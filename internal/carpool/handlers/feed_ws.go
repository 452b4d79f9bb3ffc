package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ride-pool/pkg/auth"
	"ride-pool/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RideFeed upgrades to a websocket and streams the caller's filtered view
// of the ride chat. Each emission is the full current view, so the client
// replaces its state rather than appending.
func (h *Handler) RideFeed(w http.ResponseWriter, r *http.Request, rideID string) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "feed requires authentication")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("feed_upgrade_failed", err)
		return
	}

	sub, err := h.projector.Subscribe(r.Context(), claims.UserID, rideID)
	if err != nil {
		conn.Close()
		return
	}

	log := h.log.WithFields(logger.LogFields{"ride_id": rideID, "viewer_id": claims.UserID})
	log.Info("feed_start", "Feed subscription started")

	// Read pump: the client sends nothing meaningful; reading just detects
	// close and keeps pong handling alive.
	go func() {
		defer sub.Stop()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sub.Stop()
		conn.Close()
		log.Info("feed_stop", "Feed subscription stopped")
	}()

	for {
		select {
		case view, ok := <-sub.C:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			payload, err := json.Marshal(view)
			if err != nil {
				log.Error("feed_marshal_failed", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
