package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/example/shower-tracker/internal/store"
)

const sendTimeout = 10 * time.Second

// Webhook posts notifications to each subscription's endpoint via a push
// gateway. Endpoints that answer 404 or 410 are treated as expired and
// their subscription records are deleted.
type Webhook struct {
	client *resty.Client
	subs   store.Subscriptions
	logger zerolog.Logger
}

// NewWebhook builds a Webhook notifier. gatewayURL is the base URL of the
// push gateway; each subscription's endpoint is posted relative to it.
func NewWebhook(gatewayURL string, subs store.Subscriptions, logger zerolog.Logger) *Webhook {
	client := resty.New().
		SetBaseURL(gatewayURL).
		SetTimeout(sendTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Webhook{client: client, subs: subs, logger: logger}
}

type pushPayload struct {
	Endpoint string `json:"endpoint"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Send fans the notification out to every matching subscription. It returns
// after all deliveries are attempted; callers that want fire-and-forget run
// it on a goroutine.
func (w *Webhook) Send(ctx context.Context, n Notification) {
	subs, err := w.subs.List(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("notify: list subscriptions")
		return
	}

	sent := 0
	for _, sub := range subs {
		if !n.targets(sub.User) {
			continue
		}
		resp, err := w.client.R().
			SetContext(ctx).
			SetBody(pushPayload{Endpoint: sub.Endpoint, Title: n.Title, Body: n.Body}).
			Post("/push")
		if err != nil {
			w.logger.Warn().Err(err).Str("user", sub.User).Msg("notify: push failed")
			continue
		}
		switch resp.StatusCode() {
		case 404, 410:
			// Gone endpoints never come back; drop the subscription.
			if err := w.subs.Delete(ctx, sub.Key); err != nil {
				w.logger.Warn().Err(err).Str("key", sub.Key).Msg("notify: prune stale subscription")
			} else {
				w.logger.Info().Str("key", sub.Key).Str("user", sub.User).Msg("notify: pruned stale subscription")
			}
		default:
			if resp.IsError() {
				w.logger.Warn().Int("status", resp.StatusCode()).Str("user", sub.User).Msg("notify: push rejected")
				continue
			}
			sent++
		}
	}
	w.logger.Debug().Str("title", n.Title).Int("sent", sent).Msg("notify: fan-out complete")
}
