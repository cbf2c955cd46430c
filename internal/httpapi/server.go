package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/janus-access/server/internal/janus/service"
	"github.com/janus-access/server/internal/janus/store"
	"github.com/janus-access/server/internal/janus/types"
)

type Dependencies struct {
	Logger    *log.Logger
	Addr      string
	Decisions *service.DecisionService
	Audit     *service.AuditService
	Directory store.DirectoryStore
}

// Server is the thin HTTP surface over the decision engine: listings,
// audit queries and simulated taps, nothing more.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	decisions  *service.DecisionService
	audit      *service.AuditService
	directory  store.DirectoryStore
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:    d.Logger,
		mux:       mux,
		decisions: d.Decisions,
		audit:     d.Audit,
		directory: d.Directory,
	}

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/zones", s.handleZones)
	mux.HandleFunc("GET /api/users", s.handleUsers)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("GET /api/logs/failures", s.handleFailures)
	mux.HandleFunc("GET /api/logs/suspicious", s.handleSuspicious)
	mux.HandleFunc("GET /api/users/{id}/history", s.handleUserHistory)
	mux.HandleFunc("GET /api/zones/{id}/history", s.handleZoneHistory)
	mux.HandleFunc("POST /api/simulate-tap", s.handleSimulateTap)
	mux.HandleFunc("POST /api/logs/{id}/exit", s.handleExit)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "online",
		"service": "janus access control",
	})
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.directory.ListZones(r.Context())
	if err != nil {
		s.internalError(w, "list zones", err)
		return
	}
	data := make([]zoneDTO, 0, len(zones))
	for _, z := range zones {
		data = append(data, toZoneDTO(z))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.directory.ListUsers(r.Context())
	if err != nil {
		s.internalError(w, "list users", err)
		return
	}
	data := make([]userDTO, 0, len(users))
	for _, u := range users {
		data = append(data, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.internalError(w, "list logs", err)
		return
	}
	data := toLogDTOs(entries)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleFailures(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	entries, err := s.audit.RecentFailures(r.Context(), time.Duration(hours)*time.Hour, 100)
	if err != nil {
		s.internalError(w, "list failures", err)
		return
	}
	data := toLogDTOs(entries)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleSuspicious(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	entries, err := s.audit.Suspicious(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		s.internalError(w, "list suspicious", err)
		return
	}
	data := toLogDTOs(entries)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_user_id", "user id must be numeric")
		return
	}
	days := queryInt(r, "days", 30)
	entries, err := s.audit.UserHistory(r.Context(), id, time.Duration(days)*24*time.Hour)
	if err != nil {
		s.internalError(w, "user history", err)
		return
	}
	data := toLogDTOs(entries)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleZoneHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_zone_id", "zone id must be numeric")
		return
	}
	hours := queryInt(r, "hours", 24)
	entries, err := s.audit.ZoneHistory(r.Context(), id, time.Duration(hours)*time.Hour)
	if err != nil {
		s.internalError(w, "zone history", err)
		return
	}
	data := toLogDTOs(entries)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(data), "data": data})
}

func (s *Server) handleSimulateTap(w http.ResponseWriter, r *http.Request) {
	var req types.TapRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = "API_SIMULATOR"
	}

	result, err := s.decisions.ProcessTap(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUID) {
			writeError(w, http.StatusBadRequest, "invalid_uid", err.Error())
			return
		}
		// Internal faults are distinguishable from a legitimate deny:
		// no decision was durably recorded.
		s.internalError(w, "simulate tap", err)
		return
	}

	status := http.StatusOK
	if !result.Granted {
		status = http.StatusForbidden
	}
	writeJSON(w, status, result)
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	logID := r.PathValue("id")
	if err := s.decisions.RecordExit(r.Context(), logID); err != nil {
		if errors.Is(err, service.ErrLogNotFound) {
			writeError(w, http.StatusNotFound, "log_not_found", "no such access log entry")
			return
		}
		s.internalError(w, "record exit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "log_id": logID})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("%s error: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
