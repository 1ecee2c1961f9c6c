package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/shower-tracker/internal/events"
	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/notify"
	"github.com/example/shower-tracker/internal/store"
	"github.com/example/shower-tracker/internal/timeslot"
)

// headsUpWindow is how far ahead Start looks for other users' slots when
// warning that a just-started shower cuts into an upcoming reservation.
const headsUpWindow = 5 * time.Minute

// StatusService serializes all occupancy transitions for the single shared
// shower. The mutex is the mutual exclusion point: every start and stop,
// including the ones issued by the monitors, funnels through it, so two
// concurrent starts can never both observe a free shower.
type StatusService struct {
	mu          sync.Mutex
	store       store.Store
	notifier    notify.Notifier
	hub         *events.Hub
	now         func() time.Time
	minDuration time.Duration
}

// NewStatusService wires dependencies for occupancy operations.
func NewStatusService(st store.Store, notifier notify.Notifier, hub *events.Hub, minDuration time.Duration, now func() time.Time) *StatusService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	return &StatusService{
		store:       st,
		notifier:    notifier,
		hub:         hub,
		now:         now,
		minDuration: minDuration,
	}
}

// Current returns the occupancy record as stored.
func (s *StatusService) Current(ctx context.Context) (model.ShowerStatus, error) {
	return s.store.Status().Get(ctx)
}

// Start claims the shower for the given user. It fails with OccupiedError
// when someone, including the same user, already holds it. The returned
// warning is non-empty when another user's reservation begins within the
// next few minutes; the start still succeeds.
func (s *StatusService) Start(ctx context.Context, user string) (model.ShowerStatus, string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		v := &ValidationError{}
		v.add("user", "user is required")
		return model.ShowerStatus{}, "", v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Status().Get(ctx)
	if err != nil {
		return model.ShowerStatus{}, "", err
	}
	if current.Occupied() {
		return model.ShowerStatus{}, "", &OccupiedError{By: *current.CurrentUser}
	}

	now := s.now()
	status := model.Occupy(user, now)
	if err := s.store.Status().Set(ctx, status); err != nil {
		return model.ShowerStatus{}, "", err
	}

	s.publish(events.TopicStatus)
	s.send(ctx, notify.Notification{
		Title:       "Shower occupied",
		Body:        fmt.Sprintf("%s started showering", user),
		ExcludeUser: user,
	})
	warning := s.warnUpcomingOwners(ctx, user, now)

	return status, warning, nil
}

// Stop releases the shower and records the completed shower in both log
// streams. Only the occupant may stop, and stops inside the minimum
// duration are rejected as accidental double taps.
func (s *StatusService) Stop(ctx context.Context, user string) (model.LogEntry, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		v := &ValidationError{}
		v.add("user", "user is required")
		return model.LogEntry{}, v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Status().Get(ctx)
	if err != nil {
		return model.LogEntry{}, err
	}
	if !current.Occupied() {
		return model.LogEntry{}, ErrShowerFree
	}
	if *current.CurrentUser != user {
		return model.LogEntry{}, ErrUnauthorized
	}

	now := s.now()
	if elapsed := now.Sub(*current.StartedAt); elapsed < s.minDuration {
		return model.LogEntry{}, &CooldownError{Remaining: s.minDuration - elapsed}
	}

	entry, err := s.finish(ctx, user, *current.StartedAt, now)
	if err != nil {
		return model.LogEntry{}, err
	}

	s.send(ctx, notify.Notification{
		Title:       "Shower free",
		Body:        fmt.Sprintf("%s finished showering", user),
		ExcludeUser: user,
	})
	return entry, nil
}

// ReleaseIfStale frees the shower when the occupancy is older than maxAge,
// logging the shower as if the occupant had stopped at the observed time.
// It reports whether a release happened. The auto-release monitor calls
// this every poll cycle.
func (s *StatusService) ReleaseIfStale(ctx context.Context, maxAge time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Status().Get(ctx)
	if err != nil {
		return false, err
	}
	if !current.Occupied() {
		return false, nil
	}
	now := s.now()
	// Releases fire the instant the occupancy reaches maxAge.
	if now.Sub(*current.StartedAt) < maxAge {
		return false, nil
	}

	user := *current.CurrentUser
	if _, err := s.finish(ctx, user, *current.StartedAt, now); err != nil {
		return false, err
	}

	s.send(ctx, notify.Notification{
		Title: "Shower free",
		Body:  fmt.Sprintf("%s's shower was released automatically", user),
	})
	return true, nil
}

// finish clears the status, appends the completed shower to both log
// streams, and marks a fulfilled non-recurring slot as taken. Callers hold
// the mutex.
func (s *StatusService) finish(ctx context.Context, user string, startedAt, endedAt time.Time) (model.LogEntry, error) {
	seconds := int(endedAt.Sub(startedAt) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	entry := model.LogEntry{
		User:            user,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		DurationSeconds: seconds,
	}

	entry, err := s.store.Logs().Append(ctx, model.LogOperational, entry)
	if err != nil {
		return model.LogEntry{}, err
	}
	if _, err := s.store.Logs().Append(ctx, model.LogHistory, entry); err != nil {
		return model.LogEntry{}, err
	}

	if err := s.store.Status().Set(ctx, model.Free()); err != nil {
		return model.LogEntry{}, err
	}

	s.completeFulfilledSlot(ctx, user, startedAt, endedAt)

	s.publish(events.TopicStatus)
	s.publish(events.TopicLog)
	return entry, nil
}

// completeFulfilledSlot marks the slot this shower was fulfilling as taken.
// Recurring slots reset daily and are left untouched so tomorrow's
// occurrence stays claimable. Failures here are swallowed; the shower is
// already logged and the slot will age out through the sweeper.
func (s *StatusService) completeFulfilledSlot(ctx context.Context, user string, startedAt, now time.Time) {
	slots, err := s.store.Slots().List(ctx)
	if err != nil {
		return
	}
	slot, ok := timeslot.ActiveSlot(slots, user, startedAt, now)
	if !ok || slot.Recurring || slot.Completed {
		return
	}
	slot.Completed = true
	_ = s.store.Slots().Update(ctx, slot)
	s.publish(events.TopicSlots)
}

// warnUpcomingOwners tells anyone whose reservation starts within the next
// few minutes that the shower just got taken, and returns a warning for the
// user who started it.
func (s *StatusService) warnUpcomingOwners(ctx context.Context, actor string, now time.Time) string {
	slots, err := s.store.Slots().List(ctx)
	if err != nil {
		return ""
	}
	var (
		targets []string
		soonest model.Slot
		minWait time.Duration
	)
	for _, slot := range slots {
		if slot.Recurring || slot.Completed || slot.User == actor || slot.Date != timeslot.DateOf(now) {
			continue
		}
		until := timeslot.EffectiveStart(slot, now).Sub(now)
		if until > 0 && until <= headsUpWindow {
			targets = append(targets, slot.User)
			if soonest.ID == "" || until < minWait {
				soonest, minWait = slot, until
			}
		}
	}
	if len(targets) == 0 {
		return ""
	}
	s.send(ctx, notify.Notification{
		Title:       "Heads up",
		Body:        fmt.Sprintf("%s just started a shower right before your slot", actor),
		TargetUsers: targets,
	})
	minutes := int((minWait + time.Minute - 1) / time.Minute)
	return fmt.Sprintf("%s has a slot starting in %d min", soonest.User, minutes)
}

func (s *StatusService) publish(topic events.Topic) {
	if s.hub != nil {
		s.hub.Publish(events.Event{Topic: topic, At: s.now()})
	}
}

func (s *StatusService) send(ctx context.Context, n notify.Notification) {
	go s.notifier.Send(context.WithoutCancel(ctx), n)
}
