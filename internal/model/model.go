// Package model defines the core domain types for the meetup system.
package model

import "time"

// Meetup is a time-boxed event created by an organizer.
type Meetup struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Localization string    `json:"localization"`
	Date         time.Time `json:"date"`
	ImageID      string    `json:"image_id"`
	Closed       bool      `json:"-"`
	Done         bool      `json:"done"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Organizer is filled only by listing queries.
	Organizer *Contact `json:"organizer,omitempty"`
}

// Finished reports whether the meetup can no longer be changed or joined:
// it was closed explicitly or its scheduled instant has already passed.
func (m *Meetup) Finished(now time.Time) bool {
	return m.Closed || m.Date.Before(now)
}

// Subscription is a user's attendance record for a meetup.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MeetupID  string    `json:"meetup_id"`
	CreatedAt time.Time `json:"created_at"`

	// Meetup is filled only by listing queries.
	Meetup *Meetup `json:"meetup,omitempty"`
}

// User is a registered person who can organize or attend meetups.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact is the part of a User needed to address a notification.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Notification is an outbound message produced by the core and delivered
// by a mail sender or a broker.
type Notification struct {
	To       Contact           `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Context  map[string]string `json:"context"`
}

// MeetupRequest is the payload for creating or updating a meetup.
type MeetupRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Localization string     `json:"localization"`
	Date         *time.Time `json:"date"`
	ImageID      string     `json:"image_id"`
}

// SubscribeRequest is the payload for subscribing to a meetup.
type SubscribeRequest struct {
	MeetupID string `json:"meetup_id"`
}

// RegisterUserRequest is the payload for registering a user.
type RegisterUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}
