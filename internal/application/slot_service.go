package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/example/shower-tracker/internal/events"
	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
	"github.com/example/shower-tracker/internal/timeslot"
)

// ExtendBy is the fixed increment added to a slot on each extend request.
const ExtendBy = 5 * time.Minute

// MaxSlotDurationMinutes bounds a single reservation.
const MaxSlotDurationMinutes = 120

// ClaimParams are the caller-supplied fields for a new reservation.
type ClaimParams struct {
	User            string `json:"user"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Recurring       bool   `json:"recurring"`
}

// SlotView is a slot annotated with the evaluation-time facts list callers
// render: the concrete instant it starts at and whether it is already over.
type SlotView struct {
	model.Slot
	EffectiveStart time.Time `json:"effectiveStart"`
	Past           bool      `json:"past"`
}

// SlotListing groups the schedule into today's slots and later dated ones.
// Recurring slots always appear under Today.
type SlotListing struct {
	Today    []SlotView `json:"today"`
	Upcoming []SlotView `json:"upcoming"`
}

// SlotService validates and persists reservations.
type SlotService struct {
	store store.Store
	hub   *events.Hub
	now   func() time.Time
}

// NewSlotService wires dependencies for reservation operations.
func NewSlotService(st store.Store, hub *events.Hub, now func() time.Time) *SlotService {
	if now == nil {
		now = time.Now
	}
	return &SlotService{store: st, hub: hub, now: now}
}

// Claim validates the reservation against every existing slot and persists
// it on acceptance.
func (s *SlotService) Claim(ctx context.Context, params ClaimParams) (model.Slot, error) {
	slot, err := s.buildSlot(params)
	if err != nil {
		return model.Slot{}, err
	}

	existing, err := s.store.Slots().List(ctx)
	if err != nil {
		return model.Slot{}, err
	}
	if decision := timeslot.ValidateClaim(slot, existing, s.now()); !decision.OK {
		return model.Slot{}, &ClaimRejectedError{
			Reason:     string(decision.Reason),
			ConflictID: decision.ConflictID,
		}
	}

	created, err := s.store.Slots().Create(ctx, slot)
	if err != nil {
		return model.Slot{}, err
	}
	s.publish()
	return created, nil
}

// Delete removes a reservation. Only its owner may do so.
func (s *SlotService) Delete(ctx context.Context, id, user string) error {
	slot, err := s.store.Slots().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if slot.User != strings.TrimSpace(user) {
		return ErrUnauthorized
	}
	if err := s.store.Slots().Delete(ctx, id); err != nil {
		return err
	}
	s.publish()
	return nil
}

// Extend lengthens a reservation by ExtendBy. Only the owner may extend,
// and the grown window must still clear every other slot.
func (s *SlotService) Extend(ctx context.Context, id, user string) (model.Slot, error) {
	slot, err := s.store.Slots().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Slot{}, ErrNotFound
		}
		return model.Slot{}, err
	}
	if slot.User != strings.TrimSpace(user) {
		return model.Slot{}, ErrUnauthorized
	}

	grown := slot
	grown.DurationMinutes += int(ExtendBy / time.Minute)
	if grown.DurationMinutes > MaxSlotDurationMinutes {
		v := &ValidationError{}
		v.add("durationMinutes", "slot duration limit reached")
		return model.Slot{}, v
	}

	existing, err := s.store.Slots().List(ctx)
	if err != nil {
		return model.Slot{}, err
	}
	others := existing[:0:0]
	for _, other := range existing {
		if other.ID != slot.ID {
			others = append(others, other)
		}
	}
	if decision := timeslot.ValidateClaim(grown, others, s.now()); !decision.OK && decision.Reason == timeslot.RejectOverlap {
		return model.Slot{}, &ClaimRejectedError{
			Reason:     string(decision.Reason),
			ConflictID: decision.ConflictID,
		}
	}

	if err := s.store.Slots().Update(ctx, grown); err != nil {
		return model.Slot{}, err
	}
	s.publish()
	return grown, nil
}

// List returns the schedule split into today and upcoming, each ordered by
// effective start.
func (s *SlotService) List(ctx context.Context) (SlotListing, error) {
	slots, err := s.store.Slots().List(ctx)
	if err != nil {
		return SlotListing{}, err
	}

	now := s.now()
	listing := SlotListing{}
	for _, slot := range slots {
		view := SlotView{
			Slot:           slot,
			EffectiveStart: timeslot.EffectiveStart(slot, now),
			Past:           timeslot.IsPast(slot, now),
		}
		if timeslot.IsForToday(slot, now) {
			listing.Today = append(listing.Today, view)
		} else if slot.Date > timeslot.DateOf(now) {
			listing.Upcoming = append(listing.Upcoming, view)
		}
		// Dated slots before today are omitted; the sweeper removes them.
	}

	byStart := func(views []SlotView) func(i, j int) bool {
		return func(i, j int) bool {
			if views[i].EffectiveStart.Equal(views[j].EffectiveStart) {
				return views[i].ID < views[j].ID
			}
			return views[i].EffectiveStart.Before(views[j].EffectiveStart)
		}
	}
	sort.Slice(listing.Today, byStart(listing.Today))
	sort.Slice(listing.Upcoming, byStart(listing.Upcoming))
	return listing, nil
}

func (s *SlotService) buildSlot(params ClaimParams) (model.Slot, error) {
	v := &ValidationError{}

	user := strings.TrimSpace(params.User)
	if user == "" {
		v.add("user", "user is required")
	}
	if params.DurationMinutes <= 0 {
		v.add("durationMinutes", "duration must be positive")
	} else if params.DurationMinutes > MaxSlotDurationMinutes {
		v.add("durationMinutes", "duration too long")
	}
	if _, _, err := timeslot.ParseClock(params.StartTime); err != nil {
		v.add("startTime", "start time must look like 15:04")
	}

	date := strings.TrimSpace(params.Date)
	if params.Recurring {
		// Recurring slots re-project onto the current day; a stored date is
		// only the day the slot was created on.
		if date == "" {
			date = timeslot.DateOf(s.now())
		}
	}
	if _, err := timeslot.ParseDate(date); err != nil {
		v.add("date", "date must look like 2006-01-02")
	}

	if v.HasErrors() {
		return model.Slot{}, v
	}
	return model.Slot{
		User:            user,
		Date:            date,
		StartTime:       params.StartTime,
		DurationMinutes: params.DurationMinutes,
		Recurring:       params.Recurring,
	}, nil
}

func (s *SlotService) publish() {
	if s.hub != nil {
		s.hub.Publish(events.Event{Topic: events.TopicSlots, At: s.now()})
	}
}
