// Package sqlitestore is the SQLite implementation of the meetup,
// subscription and user stores. It mirrors package repository query for
// query and returns the same sentinel errors, so services cannot tell the
// two apart. It backs local development and the storage tests.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/Shivanand-hulikatti/meetapp/internal/repository"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so stored instants sort and compare as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// Store wraps a migrated SQLite database.
type Store struct {
	db *sql.DB
}

// New returns a Store over db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const meetupColumns = `m.id, m.user_id, m.title, m.description, m.localization, m.date, m.image_id, m.closed, m.created_at, m.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMeetup(row scanner, m *model.Meetup, extra ...any) error {
	var date, created, updated string
	dest := []any{&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.Localization, &date, &m.ImageID, &m.Closed, &created, &updated}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	var err error
	if m.Date, err = parseTime(date); err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	if m.CreatedAt, err = parseTime(created); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

// CreateUser inserts a user. A taken email yields repository.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, name, email string) (*model.User, error) {
	u := &model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUserContact returns the name and email of a user.
func (s *Store) GetUserContact(ctx context.Context, id string) (model.Contact, error) {
	var c model.Contact
	err := s.db.QueryRowContext(ctx, `SELECT name, email FROM users WHERE id = ?`, id).Scan(&c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contact{}, repository.ErrNotFound
		}
		return model.Contact{}, fmt.Errorf("get user contact: %w", err)
	}
	return c, nil
}

// Create inserts a new meetup and fills in its generated id and timestamps.
func (s *Store) Create(ctx context.Context, m *model.Meetup) error {
	now := time.Now().UTC()
	m.ID = uuid.New().String()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meetups (id, user_id, title, description, localization, date, image_id, closed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		m.ID, m.OwnerID, m.Title, m.Description, m.Localization, formatTime(m.Date), m.ImageID,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert meetup: %w", err)
	}
	return nil
}

// GetMeetup returns a single meetup or repository.ErrNotFound.
func (s *Store) GetMeetup(ctx context.Context, id string) (*model.Meetup, error) {
	var m model.Meetup
	err := scanMeetup(s.db.QueryRowContext(ctx,
		`SELECT `+meetupColumns+` FROM meetups m WHERE m.id = ?`, id,
	), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	return &m, nil
}

func (s *Store) execOne(ctx context.Context, what, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Update overwrites the editable fields of a meetup.
func (s *Store) Update(ctx context.Context, m *model.Meetup) error {
	m.UpdatedAt = time.Now().UTC()
	return s.execOne(ctx, "update meetup",
		`UPDATE meetups
		 SET title = ?, description = ?, localization = ?, date = ?, image_id = ?, updated_at = ?
		 WHERE id = ?`,
		m.Title, m.Description, m.Localization, formatTime(m.Date), m.ImageID, formatTime(m.UpdatedAt), m.ID,
	)
}

// Close marks a meetup as finished.
func (s *Store) Close(ctx context.Context, id string) error {
	return s.execOne(ctx, "close meetup",
		`UPDATE meetups SET closed = 1, updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), id,
	)
}

// Delete removes a meetup and, through the foreign key, its subscriptions.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.execOne(ctx, "delete meetup", `DELETE FROM meetups WHERE id = ?`, id)
}

// ListBetween returns meetups scheduled within [start, end] with their
// organizer's contact, ordered by date.
func (s *Store) ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]model.Meetup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+meetupColumns+`, u.name, u.email
		 FROM meetups m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.date BETWEEN ? AND ?
		 ORDER BY m.date ASC, m.id ASC
		 LIMIT ? OFFSET ?`,
		formatTime(start), formatTime(end), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list meetups: %w", err)
	}
	defer rows.Close()

	var meetups []model.Meetup
	for rows.Next() {
		var m model.Meetup
		var c model.Contact
		if err := scanMeetup(rows, &m, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan meetup: %w", err)
		}
		m.Organizer = &c
		meetups = append(meetups, m)
	}
	return meetups, rows.Err()
}

// ListByOwner returns all meetups organized by ownerID, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]model.Meetup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+meetupColumns+` FROM meetups m WHERE m.user_id = ? ORDER BY m.date DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list organizer meetups: %w", err)
	}
	defer rows.Close()

	var meetups []model.Meetup
	for rows.Next() {
		var m model.Meetup
		if err := scanMeetup(rows, &m); err != nil {
			return nil, fmt.Errorf("scan meetup: %w", err)
		}
		meetups = append(meetups, m)
	}
	return meetups, rows.Err()
}

func (s *Store) findSubscription(ctx context.Context, query string, args ...any) (*model.Subscription, error) {
	var sub model.Subscription
	var created string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&sub.ID, &sub.UserID, &sub.MeetupID, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if sub.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindSubscription returns the subscription of userID to meetupID, or nil.
func (s *Store) FindSubscription(ctx context.Context, userID, meetupID string) (*model.Subscription, error) {
	sub, err := s.findSubscription(ctx,
		`SELECT id, user_id, meetup_id, created_at FROM subscriptions WHERE user_id = ? AND meetup_id = ?`,
		userID, meetupID,
	)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return sub, nil
}

// FindConflicting returns any subscription of userID to a meetup scheduled
// within [hourStart, hourEnd], or nil.
func (s *Store) FindConflicting(ctx context.Context, userID string, hourStart, hourEnd time.Time) (*model.Subscription, error) {
	sub, err := s.findSubscription(ctx,
		`SELECT s.id, s.user_id, s.meetup_id, s.created_at
		 FROM subscriptions s
		 JOIN meetups m ON m.id = s.meetup_id
		 WHERE s.user_id = ? AND m.date BETWEEN ? AND ?
		 LIMIT 1`,
		userID, formatTime(hourStart), formatTime(hourEnd),
	)
	if err != nil {
		return nil, fmt.Errorf("find conflicting subscription: %w", err)
	}
	return sub, nil
}

// InsertSubscription creates the subscription; the UNIQUE (user_id,
// meetup_id) constraint turns a concurrent second insert into
// repository.ErrDuplicate.
func (s *Store) InsertSubscription(ctx context.Context, userID, meetupID string) (*model.Subscription, error) {
	sub := &model.Subscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		MeetupID:  meetupID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_id, meetup_id, created_at) VALUES (?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.MeetupID, formatTime(sub.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return sub, nil
}

// ListActive returns the subscriptions of userID whose meetup is still open
// at now, ordered by meetup date ascending.
func (s *Store) ListActive(ctx context.Context, userID string, now time.Time) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.meetup_id, s.created_at, `+meetupColumns+`
		 FROM subscriptions s
		 JOIN meetups m ON m.id = s.meetup_id
		 WHERE s.user_id = ? AND m.closed = 0 AND m.date >= ?
		 ORDER BY m.date ASC`,
		userID, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var m model.Meetup
		var created string
		if err := scanMeetup(subscriptionRow{rows, &sub, &created}, &m); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if sub.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		sub.Meetup = &m
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// subscriptionRow prepends the subscription columns to a meetup scan.
type subscriptionRow struct {
	rows    *sql.Rows
	sub     *model.Subscription
	created *string
}

func (r subscriptionRow) Scan(dest ...any) error {
	head := []any{&r.sub.ID, &r.sub.UserID, &r.sub.MeetupID, r.created}
	return r.rows.Scan(append(head, dest...)...)
}
