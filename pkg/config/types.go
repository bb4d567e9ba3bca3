package config

// Kind identifies how an engine behaves during startup and search.
type Kind string

const (
	// KindStandard is a plain UCI engine that needs no special startup
	// handling (Stockfish and friends).
	KindStandard Kind = "standard"
	// KindThrottledNN is a neural-network engine that must be throttled to
	// play human-like (Maia-style Leela networks): single-threaded, minimal
	// batching, nodes-per-second limited, and given a weights file before it
	// is usable.
	KindThrottledNN Kind = "throttled-nn"
)

// Valid reports whether k is a known engine kind.
func (k Kind) Valid() bool {
	return k == KindStandard || k == KindThrottledNN
}

// EngineConfig describes one engine executable to launch.
type EngineConfig struct {
	// Name is the display name used in logs and health output.
	Name string `json:"name" yaml:"name"`
	// Path is the engine executable path.
	Path string `json:"path" yaml:"path"`
	// Kind selects the startup handshake. Empty defaults to standard.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// WeightsFile is the network weights file (throttled-nn only).
	WeightsFile string `json:"weightsFile,omitempty" yaml:"weightsFile,omitempty"`
	// NodesPerSecond caps the engine's search speed (throttled-nn only).
	// Zero means the default throttle.
	NodesPerSecond float64 `json:"nodesPerSecond,omitempty" yaml:"nodesPerSecond,omitempty"`
	// DisableSlowMover turns off the engine's time-management stretching
	// (throttled-nn only).
	DisableSlowMover bool `json:"disableSlowMover,omitempty" yaml:"disableSlowMover,omitempty"`

	// BookFile is an optional opening book the engine should consult.
	BookFile string `json:"bookFile,omitempty" yaml:"bookFile,omitempty"`
	// TablebasePath is an optional endgame tablebase directory.
	TablebasePath string `json:"tablebasePath,omitempty" yaml:"tablebasePath,omitempty"`
}

// Config is the full service configuration.
type Config struct {
	// Listen is the TCP address the HTTP/WebSocket server binds to.
	Listen string `json:"listen" yaml:"listen" env:"UCIWIRE_LISTEN"`
	// Engines is the active engine roster.
	Engines []EngineConfig `json:"engines" yaml:"engines"`
	// Settings holds free-form key/value settings exposed through the
	// control surface for external collaborators. The bridge itself does
	// not interpret them.
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Listen:   ":8000",
		Settings: make(map[string]any),
	}
}

// Normalize fills in defaulted fields in place.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8000"
	}
	if c.Settings == nil {
		c.Settings = make(map[string]any)
	}
	for i := range c.Engines {
		if c.Engines[i].Kind == "" {
			c.Engines[i].Kind = KindStandard
		}
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := &Config{
		Listen:   c.Listen,
		Engines:  make([]EngineConfig, len(c.Engines)),
		Settings: make(map[string]any, len(c.Settings)),
	}
	copy(out.Engines, c.Engines)
	for k, v := range c.Settings {
		out.Settings[k] = v
	}
	return out
}
