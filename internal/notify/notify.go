// Package notify delivers household notifications through a web push
// gateway. Delivery is best effort; the services fire notifications and
// move on, and failures only show up in the logs.
package notify

import "context"

// Notification is one message to fan out to subscribed household members.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`

	// ExcludeUser suppresses delivery to the named user's subscriptions,
	// typically the actor who triggered the event.
	ExcludeUser string `json:"-"`
	// TargetUsers, when non-empty, restricts delivery to the named users.
	TargetUsers []string `json:"-"`
}

func (n Notification) targets(user string) bool {
	if user == n.ExcludeUser {
		return false
	}
	if len(n.TargetUsers) == 0 {
		return true
	}
	for _, target := range n.TargetUsers {
		if user == target {
			return true
		}
	}
	return false
}

// Notifier sends a notification to every matching subscription.
type Notifier interface {
	Send(ctx context.Context, n Notification)
}

// Noop discards all notifications. Used when no push gateway is configured.
type Noop struct{}

func (Noop) Send(ctx context.Context, n Notification) {}
