// Package http provides the HTTP handlers and middleware for the shower
// tracker API.
//
// The router exposes the following endpoints:
//   - GET /status: current occupancy. POST /status/start and
//     POST /status/stop transition it; both take {"user"}.
//   - GET /slots: the schedule split into today and upcoming.
//     POST /slots claims a reservation, DELETE /slots/{id}?user= removes
//     one, POST /slots/{id}/extend lengthens one by five minutes.
//   - GET /log: recent showers. GET /log/history: the long-retention
//     stream behind analytics.
//   - GET /analytics: derived household statistics.
//   - GET /events: server-sent change events clients re-fetch on.
//   - PUT /subscriptions/{key} and DELETE /subscriptions/{key}: push
//     endpoint registration.
//   - POST /cleanup: on-demand retention sweep. GET /healthz: liveness.
//
// Request and response DTOs live alongside their handlers.
package http
