package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const meetupColumns = `m.id, m.user_id, m.title, m.description, m.localization, m.date, m.image_id, m.closed, m.created_at, m.updated_at`

// MeetupRepository handles persistence for meetups.
type MeetupRepository struct {
	db *pgxpool.Pool
}

// NewMeetupRepository constructs a MeetupRepository.
func NewMeetupRepository(db *pgxpool.Pool) *MeetupRepository {
	return &MeetupRepository{db: db}
}

func scanMeetup(row pgx.Row, m *model.Meetup, extra ...any) error {
	dest := []any{&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.Localization, &m.Date, &m.ImageID, &m.Closed, &m.CreatedAt, &m.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a new meetup and fills in its generated id and timestamps.
func (r *MeetupRepository) Create(ctx context.Context, m *model.Meetup) error {
	now := time.Now().UTC()
	m.ID = uuid.New().String()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO meetups (id, user_id, title, description, localization, date, image_id, closed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)`,
		m.ID, m.OwnerID, m.Title, m.Description, m.Localization, m.Date.UTC(), m.ImageID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert meetup: %w", err)
	}
	return nil
}

// GetMeetup returns a single meetup or ErrNotFound.
func (r *MeetupRepository) GetMeetup(ctx context.Context, id string) (*model.Meetup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var m model.Meetup
	err := scanMeetup(r.db.QueryRow(ctx,
		`SELECT `+meetupColumns+` FROM meetups m WHERE m.id = $1`, id,
	), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	return &m, nil
}

// Update overwrites the editable fields of a meetup.
func (r *MeetupRepository) Update(ctx context.Context, m *model.Meetup) error {
	m.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx,
		`UPDATE meetups
		 SET title = $2, description = $3, localization = $4, date = $5, image_id = $6, updated_at = $7
		 WHERE id = $1`,
		m.ID, m.Title, m.Description, m.Localization, m.Date.UTC(), m.ImageID, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close marks a meetup as finished.
func (r *MeetupRepository) Close(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE meetups SET closed = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("close meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a meetup; its subscriptions go with it (ON DELETE CASCADE).
func (r *MeetupRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meetups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBetween returns meetups scheduled within [start, end] together with
// their organizer's contact, ordered by date.
func (r *MeetupRepository) ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]model.Meetup, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+meetupColumns+`, u.name, u.email
		 FROM meetups m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.date BETWEEN $1 AND $2
		 ORDER BY m.date ASC, m.id ASC
		 LIMIT $3 OFFSET $4`,
		start.UTC(), end.UTC(), limit, offset,
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
func (r *MeetupRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Meetup, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+meetupColumns+`
		 FROM meetups m
		 WHERE m.user_id = $1
		 ORDER BY m.date DESC`,
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
