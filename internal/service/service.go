// Package service implements business rules, validation and orchestration
// between HTTP handlers and the storage layer.
package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
)

// MeetupRegistry looks up meetups by id. Implementations return
// repository.ErrNotFound for unknown ids.
type MeetupRegistry interface {
	GetMeetup(ctx context.Context, id string) (*model.Meetup, error)
}

// MeetupStore is the full meetup persistence used by MeetupService.
type MeetupStore interface {
	MeetupRegistry
	Create(ctx context.Context, m *model.Meetup) error
	Update(ctx context.Context, m *model.Meetup) error
	Close(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]model.Meetup, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Meetup, error)
}

// SubscriptionStore reads and writes subscriptions. Find methods return
// (nil, nil) when nothing matches. InsertSubscription must enforce
// (user, meetup) uniqueness itself and report a violation as
// repository.ErrDuplicate.
type SubscriptionStore interface {
	FindSubscription(ctx context.Context, userID, meetupID string) (*model.Subscription, error)
	FindConflicting(ctx context.Context, userID string, hourStart, hourEnd time.Time) (*model.Subscription, error)
	InsertSubscription(ctx context.Context, userID, meetupID string) (*model.Subscription, error)
	ListActive(ctx context.Context, userID string, now time.Time) ([]model.Subscription, error)
}

// UserDirectory resolves user contacts.
type UserDirectory interface {
	GetUserContact(ctx context.Context, userID string) (model.Contact, error)
}

// UserStore is the user persistence used by UserService.
type UserStore interface {
	UserDirectory
	CreateUser(ctx context.Context, name, email string) (*model.User, error)
}

// Notifier accepts notifications for asynchronous delivery. Enqueue must not
// block; it reports false when the notification was dropped.
type Notifier interface {
	Enqueue(n model.Notification) bool
}

// OutcomeRecorder counts subscribe attempts by outcome.
type OutcomeRecorder interface {
	SubscribeOutcome(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) SubscribeOutcome(string) {}
