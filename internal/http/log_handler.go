package http

import (
	"net/http"

	"github.com/example/shower-tracker/internal/application"
	"github.com/example/shower-tracker/internal/model"
)

// LogHandler serves the two shower logs and the analytics report.
type LogHandler struct {
	logs      *application.LogService
	analytics *application.AnalyticsService
	resp      responder
}

// NewLogHandler builds the handler.
func NewLogHandler(logs *application.LogService, analytics *application.AnalyticsService, resp responder) *LogHandler {
	return &LogHandler{logs: logs, analytics: analytics, resp: resp}
}

type logResponse struct {
	Entries []model.LogEntry `json:"entries"`
}

// Recent returns the operational log, newest first.
func (h *LogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.Recent(r.Context())
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, logResponse{Entries: entries})
}

// History returns the long-retention log, newest first.
func (h *LogHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.History(r.Context())
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, logResponse{Entries: entries})
}

// Analytics returns the derived statistics report.
func (h *LogHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.Report(r.Context())
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, report)
}
