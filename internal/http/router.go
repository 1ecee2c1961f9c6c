package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RouterConfig groups the handlers and middleware the router mounts.
type RouterConfig struct {
	Status        *StatusHandler
	Slots         *SlotHandler
	Logs          *LogHandler
	Events        *EventsHandler
	Subscriptions *SubscriptionHandler
	Admin         *AdminHandler
	Middleware    []mux.MiddlewareFunc
}

// NewResponder exposes the package responder for handler construction.
func NewResponder(logger zerolog.Logger) responder {
	return newResponder(logger)
}

// NewRouter mounts every endpoint on a gorilla/mux router. The health
// endpoint stays outside the middleware chain so probes bypass key auth.
func NewRouter(cfg RouterConfig) http.Handler {
	root := mux.NewRouter()
	if cfg.Admin != nil {
		root.HandleFunc("/healthz", cfg.Admin.Healthz).Methods(http.MethodGet)
	}

	api := root.PathPrefix("/").Subrouter()
	for _, mw := range cfg.Middleware {
		api.Use(mw)
	}

	if cfg.Status != nil {
		api.HandleFunc("/status", cfg.Status.Get).Methods(http.MethodGet)
		api.HandleFunc("/status/start", cfg.Status.Start).Methods(http.MethodPost)
		api.HandleFunc("/status/stop", cfg.Status.Stop).Methods(http.MethodPost)
	}
	if cfg.Slots != nil {
		api.HandleFunc("/slots", cfg.Slots.List).Methods(http.MethodGet)
		api.HandleFunc("/slots", cfg.Slots.Create).Methods(http.MethodPost)
		api.HandleFunc("/slots/{id}", cfg.Slots.Delete).Methods(http.MethodDelete)
		api.HandleFunc("/slots/{id}/extend", cfg.Slots.Extend).Methods(http.MethodPost)
	}
	if cfg.Logs != nil {
		api.HandleFunc("/log", cfg.Logs.Recent).Methods(http.MethodGet)
		api.HandleFunc("/log/history", cfg.Logs.History).Methods(http.MethodGet)
		api.HandleFunc("/analytics", cfg.Logs.Analytics).Methods(http.MethodGet)
	}
	if cfg.Events != nil {
		api.HandleFunc("/events", cfg.Events.Stream).Methods(http.MethodGet)
	}
	if cfg.Subscriptions != nil {
		api.HandleFunc("/subscriptions/{key}", cfg.Subscriptions.Put).Methods(http.MethodPut)
		api.HandleFunc("/subscriptions/{key}", cfg.Subscriptions.Delete).Methods(http.MethodDelete)
	}
	if cfg.Admin != nil {
		api.HandleFunc("/cleanup", cfg.Admin.Cleanup).Methods(http.MethodPost)
	}
	return root
}
