// Package server is a small demonstration server for optimistic state over
// WebSocket.
//
// It exposes a single shared counter. When a client sends an increment, the
// server applies the change optimistically and broadcasts the new displayed
// value immediately, then runs the authoritative backend operation and
// broadcasts the settled value once the outcome is known. If the backend
// rejects the change, the broadcast carries the rolled-back value.
//
// Routes:
//
//	GET /ws       WebSocket endpoint (line-delimited JSON frames)
//	GET /healthz  liveness probe
//	GET /metrics  Prometheus metrics
//
// Wire format, client to server:
//
//	{"type": "increment", "delta": 1}
//
// Server to client, after every transition:
//
//	{"type": "state", "value": 42, "pending": true}
package server
