// Package server exposes foodsync over HTTP.
//
// # Routes
//
//   - ANY  /api/trigger: send the GitHub dispatch that runs the update workflow
//   - POST /api/sync: run a sync in this process
//   - GET  /healthz: liveness
//   - GET  /metrics: Prometheus metrics
//
// When an API key is configured, /api routes require it in X-API-Key.
package server
