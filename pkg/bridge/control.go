package bridge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/uciwire/uciwire/pkg/config"
	"github.com/uciwire/uciwire/pkg/uci"
)

// ErrorResponse is the JSON error body of the control surface.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{Error: errCode, Message: message})
}

// routes builds the HTTP handler tree.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/config", s.handleReplaceConfig)
	mux.HandleFunc("POST /api/config", s.handleReplaceConfig)
	mux.HandleFunc("GET /api/config/{key}", s.handleGetSetting)
	mux.HandleFunc("POST /api/config/{key}", s.handleSetSetting)

	return corsMiddleware(mux)
}

// indexResponse is the GET / body.
type indexResponse struct {
	Service     string   `json:"service"`
	Version     string   `json:"version"`
	Engines     []string `json:"engines"`
	Connections int      `json:"connections"`
}

// handleIndex handles GET / with a service info snapshot.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	engines := s.set.Engines()
	names := make([]string, len(engines))
	for i, eng := range engines {
		names[i] = eng.Name()
	}
	writeJSON(w, http.StatusOK, indexResponse{
		Service:     "uciwire",
		Version:     Version,
		Engines:     names,
		Connections: s.hub.Count(),
	})
}

// handleGetConfig handles GET /api/config.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.cfgMu.RLock()
	snapshot := s.cfg.Clone()
	s.cfgMu.RUnlock()
	writeJSON(w, http.StatusOK, snapshot)
}

// handleReplaceConfig handles PUT/POST /api/config: full configuration
// replacement. The engine roster is swapped live; if not a single requested
// engine can be launched the previous roster stays active and 422 is
// returned.
func (s *Server) handleReplaceConfig(w http.ResponseWriter, r *http.Request) {
	var next config.Config
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	next.Normalize()
	// The listen address cannot change on a live server.
	s.cfgMu.RLock()
	next.Listen = s.cfg.Listen
	s.cfgMu.RUnlock()

	if err := next.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}

	if err := s.set.ReplaceAll(next.Engines); err != nil {
		if errors.Is(err, uci.ErrNoUsableEngines) {
			writeError(w, http.StatusUnprocessableEntity, "no_usable_engines",
				"none of the requested engines could be launched; previous engines kept")
			return
		}
		writeError(w, http.StatusInternalServerError, "replace_failed", err.Error())
		return
	}

	s.cfgMu.Lock()
	s.cfg = next.Clone()
	s.cfgMu.Unlock()

	s.handleGetConfig(w, r)
}

// settingValue is the body of the single-key endpoints.
type settingValue struct {
	Value any `json:"value"`
}

// handleGetSetting handles GET /api/config/{key}.
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	s.cfgMu.RLock()
	value, ok := s.cfg.Settings[key]
	s.cfgMu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, "unknown_setting", "no such setting: "+key)
		return
	}
	writeJSON(w, http.StatusOK, settingValue{Value: value})
}

// handleSetSetting handles POST /api/config/{key}.
func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var body settingValue
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	s.cfgMu.Lock()
	if s.cfg.Settings == nil {
		s.cfg.Settings = make(map[string]any)
	}
	s.cfg.Settings[key] = body.Value
	s.cfgMu.Unlock()

	writeJSON(w, http.StatusOK, settingValue{Value: body.Value})
}
