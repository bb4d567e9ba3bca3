// Package uci manages UCI chess engine subprocesses.
//
// The package is layered:
//   - Process: a raw subprocess with line-oriented stdin/stdout access
//   - Engine: a Process plus the UCI startup handshake and a command queue
//   - Set: the live roster of engines, swappable as a unit at runtime
//
// Engines never block the caller. Commands enqueue until the engine finishes
// its handshake, output is drained in non-blocking batches, and a crashed
// engine degrades to a no-op rather than failing the whole set.
package uci
