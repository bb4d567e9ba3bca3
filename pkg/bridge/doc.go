// Package bridge ties the engine roster and the client hub together behind
// an HTTP server.
//
// The server exposes a WebSocket endpoint at /ws for raw UCI traffic, a JSON
// control surface under /api/config for live reconfiguration, and /health.
// Every line a client sends fans out to all engines; every line an engine
// prints is broadcast to all clients. There is no session isolation.
package bridge
