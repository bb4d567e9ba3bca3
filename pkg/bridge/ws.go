package bridge

import (
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// handleWS upgrades the request and pumps client commands into the engines
// until the connection drops. Engine output reaches the client through the
// hub, driven by the poll loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Clients are browser extensions and local tooling on arbitrary
		// origins.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := s.hub.Add(ws)
	s.reportConnections()
	defer func() {
		s.hub.Remove(conn)
		s.reportConnections()
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		// One message may carry several newline-separated commands.
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			s.route(line)
		}
	}
}
