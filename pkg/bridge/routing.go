package bridge

import (
	"strings"

	"github.com/uciwire/uciwire/pkg/config"
	"github.com/uciwire/uciwire/pkg/uci"
)

// route fans one client command out to every engine in the current roster.
// The roster snapshot is taken once per command so a concurrent swap sends
// each command to a single consistent generation.
//
// "ucinewgame" doubles as the lazy startup trigger: an engine that was never
// handshaken gets its handshake now, and throttled engines get an extra
// readiness probe after the new game, matching how they re-sync internally.
// Everything else passes through verbatim.
func (s *Server) route(cmd string) {
	engines := s.set.Engines()
	word := firstWord(cmd)

	for _, eng := range engines {
		if word == "ucinewgame" {
			if eng.State() == uci.Uninitialized {
				eng.Init()
			}
			eng.Enqueue(cmd)
			if eng.Kind() == config.KindThrottledNN {
				eng.Enqueue("isready")
			}
			continue
		}
		eng.Enqueue(cmd)
	}
}

func firstWord(cmd string) string {
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		return cmd[:i]
	}
	return cmd
}
