package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/Shivanand-hulikatti/meetapp/internal/repository"
	"github.com/Shivanand-hulikatti/meetapp/internal/timerange"
)

// PageSize is the number of meetups returned per listing page.
const PageSize = 10

// MaxPage is the largest page whose offset fits in an int.
const MaxPage = math.MaxInt/PageSize + 1

// MeetupService orchestrates meetup lifecycle operations.
type MeetupService struct {
	meetups MeetupStore
	clock   timerange.Clock
	loc     *time.Location
}

// NewMeetupService constructs a MeetupService. A nil loc means UTC.
func NewMeetupService(meetups MeetupStore, clock timerange.Clock, loc *time.Location) *MeetupService {
	if loc == nil {
		loc = time.UTC
	}
	return &MeetupService{meetups: meetups, clock: clock, loc: loc}
}

// validate trims the request and checks that every field is present.
func validateMeetup(req *model.MeetupRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Localization = strings.TrimSpace(req.Localization)
	req.ImageID = strings.TrimSpace(req.ImageID)

	var missing []string
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.Description == "" {
		missing = append(missing, "description")
	}
	if req.Localization == "" {
		missing = append(missing, "localization")
	}
	if req.Date == nil || req.Date.IsZero() {
		missing = append(missing, "date")
	}
	if req.ImageID == "" {
		missing = append(missing, "image_id")
	}
	if len(missing) > 0 {
		return validationError("validation fails: missing " + strings.Join(missing, ", "))
	}
	return nil
}

func (s *MeetupService) markDone(m *model.Meetup, now time.Time) {
	m.Done = m.Finished(now)
}

// load fetches a meetup, translating a missing row into ErrNotFound.
func (s *MeetupService) load(ctx context.Context, id string) (*model.Meetup, error) {
	m, err := s.meetups.GetMeetup(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	return m, nil
}

// Create validates the request and stores a new meetup owned by ownerID.
func (s *MeetupService) Create(ctx context.Context, ownerID string, req model.MeetupRequest) (*model.Meetup, error) {
	if err := validateMeetup(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, validationError("validation fails: missing user_id")
	}
	now := s.clock.Now()
	if timerange.IsPast(now, *req.Date) {
		return nil, ErrPastDate
	}

	m := &model.Meetup{
		OwnerID:      ownerID,
		Title:        req.Title,
		Description:  req.Description,
		Localization: req.Localization,
		Date:         req.Date.UTC(),
		ImageID:      req.ImageID,
	}
	if err := s.meetups.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create meetup: %w", err)
	}
	s.markDone(m, now)
	return m, nil
}

// Get returns a single meetup.
func (s *MeetupService) Get(ctx context.Context, id string) (*model.Meetup, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.markDone(m, s.clock.Now())
	return m, nil
}

// Update changes a meetup. Only its owner may do so, and only while it is
// not finished.
func (s *MeetupService) Update(ctx context.Context, actorID, id string, req model.MeetupRequest) (*model.Meetup, error) {
	if err := validateMeetup(&req); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != actorID {
		return nil, ErrOwnerMismatch
	}
	now := s.clock.Now()
	if m.Finished(now) {
		return nil, ErrAlreadyFinalized
	}
	if timerange.IsPast(now, *req.Date) {
		return nil, ErrPastDate
	}

	m.Title = req.Title
	m.Description = req.Description
	m.Localization = req.Localization
	m.Date = req.Date.UTC()
	m.ImageID = req.ImageID
	if err := s.meetups.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update meetup: %w", err)
	}
	s.markDone(m, now)
	return m, nil
}

// Cancel deletes a meetup together with its subscriptions. A finished
// meetup is reported before an ownership mismatch.
func (s *MeetupService) Cancel(ctx context.Context, actorID, id string) error {
	m, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if m.Finished(s.clock.Now()) {
		return ErrAlreadyFinalized
	}
	if m.OwnerID != actorID {
		return ErrOwnerMismatch
	}
	if err := s.meetups.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete meetup: %w", err)
	}
	return nil
}

// Close marks a meetup as finished ahead of its date. Closed meetups accept
// no more subscriptions or edits.
func (s *MeetupService) Close(ctx context.Context, actorID, id string) (*model.Meetup, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != actorID {
		return nil, ErrOwnerMismatch
	}
	if m.Finished(s.clock.Now()) {
		return nil, ErrAlreadyFinalized
	}
	if err := s.meetups.Close(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("close meetup: %w", err)
	}
	m.Closed = true
	m.Done = true
	return m, nil
}

// ListByDay returns one page of the meetups scheduled on date
// (YYYY-MM-DD in the service time zone, today when empty). Pages start at 1.
func (s *MeetupService) ListByDay(ctx context.Context, date string, page int) ([]model.Meetup, error) {
	day := s.clock.Now().In(s.loc)
	if date = strings.TrimSpace(date); date != "" {
		var err error
		day, err = time.ParseInLocation(time.DateOnly, date, s.loc)
		if err != nil {
			return nil, validationError("date must be formatted as YYYY-MM-DD")
		}
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return nil, validationError("page is out of range")
	}

	start, end := timerange.DayBounds(day, s.loc)
	meetups, err := s.meetups.ListBetween(ctx, start, end, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("list meetups: %w", err)
	}
	now := s.clock.Now()
	for i := range meetups {
		s.markDone(&meetups[i], now)
	}
	return meetups, nil
}

// ListByOrganizer returns every meetup owned by ownerID.
func (s *MeetupService) ListByOrganizer(ctx context.Context, ownerID string) ([]model.Meetup, error) {
	meetups, err := s.meetups.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list organizer meetups: %w", err)
	}
	now := s.clock.Now()
	for i := range meetups {
		s.markDone(&meetups[i], now)
	}
	return meetups, nil
}
