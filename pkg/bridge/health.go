package bridge

import (
	"net/http"
	"time"

	"github.com/uciwire/uciwire/pkg/config"
)

// EngineStatus is one engine's entry in the health response.
type EngineStatus struct {
	Name  string      `json:"name"`
	Kind  config.Kind `json:"kind"`
	State string      `json:"state"`
	Alive bool        `json:"alive"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status      string         `json:"status"`
	Uptime      string         `json:"uptime"`
	Engines     []EngineStatus `json:"engines"`
	Connections int            `json:"connections"`
	Settings    int            `json:"settings"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	engines := s.set.Engines()
	statuses := make([]EngineStatus, len(engines))
	for i, eng := range engines {
		statuses[i] = EngineStatus{
			Name:  eng.Name(),
			Kind:  eng.Kind(),
			State: eng.State().String(),
			Alive: eng.Alive(),
		}
	}

	s.cfgMu.RLock()
	settings := len(s.cfg.Settings)
	s.cfgMu.RUnlock()

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Uptime:      s.Uptime().Round(time.Second).String(),
		Engines:     statuses,
		Connections: s.hub.Count(),
		Settings:    settings,
	})
}
