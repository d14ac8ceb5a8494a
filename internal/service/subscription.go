package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/Shivanand-hulikatti/meetapp/internal/repository"
	"github.com/Shivanand-hulikatti/meetapp/internal/timerange"
)

const (
	subscriptionSubject  = "New subscription"
	subscriptionTemplate = "subscription"

	// notifyLookupTimeout bounds the contact lookups that follow a commit.
	notifyLookupTimeout = 5 * time.Second
)

// subscribeAttempt carries state between guards; the existence guard fills
// in meetup for the guards after it.
type subscribeAttempt struct {
	userID   string
	meetupID string
	meetup   *model.Meetup
	now      time.Time
}

// guard is one admission rule. check returns false to reject the attempt
// with reject; a non-nil error aborts with an internal failure.
type guard struct {
	name   string
	check  func(ctx context.Context, a *subscribeAttempt) (bool, error)
	reject *Error
}

// SubscriptionService decides whether a user may subscribe to a meetup and
// records the subscription when they may.
type SubscriptionService struct {
	meetups  MeetupRegistry
	subs     SubscriptionStore
	users    UserDirectory
	notifier Notifier
	clock    timerange.Clock
	loc      *time.Location
	outcomes OutcomeRecorder
	log      *slog.Logger
	guards   []guard
}

// SubscriptionOption customises a SubscriptionService.
type SubscriptionOption func(*SubscriptionService)

// WithClock replaces the wall clock.
func WithClock(c timerange.Clock) SubscriptionOption {
	return func(s *SubscriptionService) { s.clock = c }
}

// WithLocation sets the time zone that hour windows are aligned to.
func WithLocation(loc *time.Location) SubscriptionOption {
	return func(s *SubscriptionService) { s.loc = loc }
}

// WithOutcomeRecorder sets where subscribe outcomes are counted.
func WithOutcomeRecorder(r OutcomeRecorder) SubscriptionOption {
	return func(s *SubscriptionService) { s.outcomes = r }
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(
	meetups MeetupRegistry,
	subs SubscriptionStore,
	users UserDirectory,
	notifier Notifier,
	log *slog.Logger,
	opts ...SubscriptionOption,
) *SubscriptionService {
	s := &SubscriptionService{
		meetups:  meetups,
		subs:     subs,
		users:    users,
		notifier: notifier,
		clock:    timerange.SystemClock{},
		loc:      time.UTC,
		outcomes: noopRecorder{},
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.guards = []guard{
		{name: "exists", check: s.meetupExists, reject: ErrNotFound},
		{name: "target", check: s.targetOpen, reject: ErrInvalidTarget},
		{name: "duplicate", check: s.notSubscribed, reject: ErrDuplicateSubscription},
		{name: "schedule", check: s.hourFree, reject: ErrScheduleConflict},
	}
	return s
}

func (s *SubscriptionService) meetupExists(ctx context.Context, a *subscribeAttempt) (bool, error) {
	m, err := s.meetups.GetMeetup(ctx, a.meetupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	a.meetup = m
	return true, nil
}

func (s *SubscriptionService) targetOpen(_ context.Context, a *subscribeAttempt) (bool, error) {
	return a.meetup.OwnerID != a.userID && !a.meetup.Finished(a.now), nil
}

func (s *SubscriptionService) notSubscribed(ctx context.Context, a *subscribeAttempt) (bool, error) {
	existing, err := s.subs.FindSubscription(ctx, a.userID, a.meetupID)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

// hourFree rejects when the user already attends something in the clock
// hour of the target meetup. The window always comes from the target.
func (s *SubscriptionService) hourFree(ctx context.Context, a *subscribeAttempt) (bool, error) {
	start, end := timerange.HourBounds(a.meetup.Date, s.loc)
	conflict, err := s.subs.FindConflicting(ctx, a.userID, start, end)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

// Subscribe runs the admission guards in order, stopping at the first that
// rejects, then stores the subscription and queues the organizer
// notification. The duplicate and schedule guards race with concurrent
// requests; the store's unique constraint settles duplicates, while
// same-hour conflicts between two simultaneous requests can slip through.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, meetupID string) (*model.Subscription, error) {
	meetupID = strings.TrimSpace(meetupID)
	if meetupID == "" {
		s.outcomes.SubscribeOutcome(string(KindValidationFailed))
		return nil, validationError("meetup_id is required")
	}

	a := &subscribeAttempt{userID: userID, meetupID: meetupID, now: s.clock.Now()}
	for _, g := range s.guards {
		ok, err := g.check(ctx, a)
		if err != nil {
			s.outcomes.SubscribeOutcome("error")
			return nil, fmt.Errorf("%s guard: %w", g.name, err)
		}
		if !ok {
			s.outcomes.SubscribeOutcome(string(g.reject.Kind))
			return nil, g.reject
		}
	}

	sub, err := s.subs.InsertSubscription(ctx, userID, meetupID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.outcomes.SubscribeOutcome(string(KindDuplicateSubscription))
			return nil, ErrDuplicateSubscription
		}
		s.outcomes.SubscribeOutcome("error")
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	s.outcomes.SubscribeOutcome("subscribed")

	s.notifyOrganizer(ctx, a.meetup, userID)
	return sub, nil
}

// notifyOrganizer hands the new-subscription mail to the notifier. Failures
// are logged and never reach the caller. The subscription is already
// committed, so the lookups run detached from the request's cancellation.
func (s *SubscriptionService) notifyOrganizer(ctx context.Context, m *model.Meetup, subscriberID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyLookupTimeout)
	defer cancel()

	organizer, err := s.users.GetUserContact(ctx, m.OwnerID)
	if err != nil {
		s.log.Error("notification skipped: organizer lookup failed", "meetup_id", m.ID, "err", err)
		return
	}
	subscriber, err := s.users.GetUserContact(ctx, subscriberID)
	if err != nil {
		s.log.Error("notification skipped: subscriber lookup failed", "user_id", subscriberID, "err", err)
		return
	}

	n := model.Notification{
		To:       organizer,
		Subject:  subscriptionSubject,
		Template: subscriptionTemplate,
		Context: map[string]string{
			"organizer_name":   organizer.Name,
			"subscriber_name":  subscriber.Name,
			"subscriber_email": subscriber.Email,
			"meetup_title":     m.Title,
			"meetup_date":      m.Date.In(s.loc).Format(time.RFC1123),
		},
	}
	if !s.notifier.Enqueue(n) {
		s.log.Warn("notification dropped", "meetup_id", m.ID, "user_id", subscriberID)
	}
}

// ListActive returns the user's subscriptions to meetups that are not yet
// finished, ordered by meetup date.
func (s *SubscriptionService) ListActive(ctx context.Context, userID string) ([]model.Subscription, error) {
	subs, err := s.subs.ListActive(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *SubscriptionService) guardNames() []string {
	names := make([]string, len(s.guards))
	for i, g := range s.guards {
		names[i] = g.name
	}
	return names
}
