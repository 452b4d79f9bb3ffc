package handlers

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"ride-pool/pkg/auth"
	"ride-pool/pkg/logger"
)

// Router handles HTTP routing for the pool service.
type Router struct {
	mux     *http.ServeMux
	handler *Handler
	jwt     *auth.JWTManager
	logger  logger.Logger
}

func NewRouter(handler *Handler, jwt *auth.JWTManager, log logger.Logger) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		handler: handler,
		jwt:     jwt,
		logger:  log,
	}

	r.registerRoutes()
	return r
}

func (r *Router) registerRoutes() {
	r.mux.HandleFunc("/health", r.handler.Health)
	r.mux.HandleFunc("/rides", r.handleRides)
	r.mux.HandleFunc("/rides/", r.handleRideRoutes)
	r.mux.HandleFunc("/blocks", r.handleBlocks)
}

func (r *Router) handleRides(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		r.handler.CreateRide(w, req)
	case http.MethodGet:
		r.handler.ListRides(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

// handleRideRoutes dispatches everything scoped to a single ride:
//
//	DELETE /rides/{id}
//	POST   /rides/{id}/requests
//	GET    /rides/{id}/requests
//	GET    /rides/{id}/requests/me
//	DELETE /rides/{id}/requests/{requestID}
//	POST   /rides/{id}/requests/{requestID}/approve
//	POST   /rides/{id}/messages
//	POST   /rides/{id}/reports
//	GET    /rides/{id}/feed  (websocket)
func (r *Router) handleRideRoutes(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/rides/")
	segments := strings.Split(strings.TrimSuffix(path, "/"), "/")

	rideID := segments[0]
	if rideID == "" {
		http.NotFound(w, req)
		return
	}

	switch len(segments) {
	case 1:
		if req.Method != http.MethodDelete {
			r.methodNotAllowed(w)
			return
		}
		r.handler.DeleteRide(w, req, rideID)

	case 2:
		switch segments[1] {
		case "requests":
			switch req.Method {
			case http.MethodPost:
				r.handler.RequestToJoin(w, req, rideID)
			case http.MethodGet:
				r.handler.ListRequests(w, req, rideID)
			default:
				r.methodNotAllowed(w)
			}
		case "messages":
			if req.Method != http.MethodPost {
				r.methodNotAllowed(w)
				return
			}
			r.handler.SendMessage(w, req, rideID)
		case "reports":
			if req.Method != http.MethodPost {
				r.methodNotAllowed(w)
				return
			}
			r.handler.ReportMessage(w, req, rideID)
		case "feed":
			if req.Method != http.MethodGet {
				r.methodNotAllowed(w)
				return
			}
			r.handler.RideFeed(w, req, rideID)
		default:
			http.NotFound(w, req)
		}

	case 3:
		if segments[1] != "requests" {
			http.NotFound(w, req)
			return
		}
		if segments[2] == "me" {
			if req.Method != http.MethodGet {
				r.methodNotAllowed(w)
				return
			}
			r.handler.FetchOwnRequest(w, req, rideID)
			return
		}
		if req.Method != http.MethodDelete {
			r.methodNotAllowed(w)
			return
		}
		r.handler.WithdrawRequest(w, req, rideID, segments[2])

	case 4:
		if segments[1] != "requests" || segments[3] != "approve" {
			http.NotFound(w, req)
			return
		}
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		r.handler.ApproveRequest(w, req, rideID, segments[2])

	default:
		http.NotFound(w, req)
	}
}

func (r *Router) handleBlocks(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	r.handler.BlockUser(w, req)
}

// ServeHTTP implements the http.Handler interface.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := r.loggingMiddleware(
		r.corsMiddleware(
			r.jwt.Middleware(
				r.recoveryMiddleware(r.mux),
			),
		),
	)
	handler.ServeHTTP(w, req)
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, req)

		duration := time.Since(start)

		r.logger.WithFields(logger.LogFields{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": req.RemoteAddr,
		}).Info("http.request", fmt.Sprintf("%s %s -> %d (%s)", req.Method, req.URL.Path, wrapped.statusCode, duration))
	})
}

func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}

func (r *Router) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				r.logger.Error("http.panic", fmt.Errorf("panic: %v", err))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Internal server error"}`))
			}
		}()

		next.ServeHTTP(w, req)
	})
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the underlying connection.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("hijacking not supported")
	}
	return hj.Hijack()
}
