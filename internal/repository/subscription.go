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

// SubscriptionRepository handles persistence for subscriptions.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) findOne(ctx context.Context, query string, args ...any) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.UserID, &s.MeetupID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindSubscription returns the subscription of userID to meetupID, or nil
// when there is none.
func (r *SubscriptionRepository) FindSubscription(ctx context.Context, userID, meetupID string) (*model.Subscription, error) {
	s, err := r.findOne(ctx,
		`SELECT id, user_id, meetup_id, created_at
		 FROM subscriptions
		 WHERE user_id = $1 AND meetup_id = $2`,
		userID, meetupID,
	)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return s, nil
}

// FindConflicting returns any subscription of userID to a meetup scheduled
// within [hourStart, hourEnd], or nil when there is none.
func (r *SubscriptionRepository) FindConflicting(ctx context.Context, userID string, hourStart, hourEnd time.Time) (*model.Subscription, error) {
	s, err := r.findOne(ctx,
		`SELECT s.id, s.user_id, s.meetup_id, s.created_at
		 FROM subscriptions s
		 JOIN meetups m ON m.id = s.meetup_id
		 WHERE s.user_id = $1 AND m.date BETWEEN $2 AND $3
		 LIMIT 1`,
		userID, hourStart.UTC(), hourEnd.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("find conflicting subscription: %w", err)
	}
	return s, nil
}

// InsertSubscription creates the subscription. The UNIQUE (user_id,
// meetup_id) constraint decides between concurrent attempts: the loser gets
// ErrDuplicate.
func (r *SubscriptionRepository) InsertSubscription(ctx context.Context, userID, meetupID string) (*model.Subscription, error) {
	s := &model.Subscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		MeetupID:  meetupID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO subscriptions (id, user_id, meetup_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.MeetupID, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return s, nil
}

// ListActive returns the subscriptions of userID whose meetup is still open
// at now, joined with the meetup and ordered by meetup date ascending.
func (r *SubscriptionRepository) ListActive(ctx context.Context, userID string, now time.Time) ([]model.Subscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.user_id, s.meetup_id, s.created_at, `+meetupColumns+`
		 FROM subscriptions s
		 JOIN meetups m ON m.id = s.meetup_id
		 WHERE s.user_id = $1 AND m.closed = FALSE AND m.date >= $2
		 ORDER BY m.date ASC`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var s model.Subscription
		var m model.Meetup
		err := rows.Scan(&s.ID, &s.UserID, &s.MeetupID, &s.CreatedAt,
			&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.Localization, &m.Date, &m.ImageID, &m.Closed, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		s.Meetup = &m
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
