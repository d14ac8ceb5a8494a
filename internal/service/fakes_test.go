package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/Shivanand-hulikatti/meetapp/internal/repository"
	"github.com/google/uuid"
)

// memStore is an in-memory MeetupStore, SubscriptionStore and UserStore.
// InsertSubscription enforces (user, meetup) uniqueness under its mutex the
// way a database unique constraint would.
type memStore struct {
	mu      sync.Mutex
	users   map[string]model.User
	meetups map[string]*model.Meetup
	subs    []model.Subscription

	// hooks for error injection and inspection
	getErr       error
	findErr      error
	insertErr    error
	contactErr   error
	skipFind     bool
	lastWindow   [2]time.Time
	lastBetween  [2]time.Time
	lastLimitOff [2]int
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]model.User{},
		meetups: map[string]*model.Meetup{},
	}
}

func (s *memStore) addUser(name, email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.users[id] = model.User{ID: id, Name: name, Email: email}
	return id
}

func (s *memStore) addMeetup(owner string, date time.Time) *model.Meetup {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &model.Meetup{
		ID: uuid.NewString(), OwnerID: owner, Title: "Meetup", Description: "d",
		Localization: "l", Date: date, ImageID: "img",
	}
	s.meetups[m.ID] = m
	return m
}

func (s *memStore) count(userID, meetupID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.MeetupID == meetupID {
			n++
		}
	}
	return n
}

func (s *memStore) CreateUser(_ context.Context, name, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	u := model.User{ID: uuid.NewString(), Name: name, Email: email}
	s.users[u.ID] = u
	return &u, nil
}

func (s *memStore) GetUserContact(_ context.Context, id string) (model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contactErr != nil {
		return model.Contact{}, s.contactErr
	}
	u, ok := s.users[id]
	if !ok {
		return model.Contact{}, repository.ErrNotFound
	}
	return model.Contact{Name: u.Name, Email: u.Email}, nil
}

func (s *memStore) GetMeetup(_ context.Context, id string) (*model.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	m, ok := s.meetups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, m *model.Meetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.NewString()
	cp := *m
	s.meetups[m.ID] = &cp
	return nil
}

func (s *memStore) Update(_ context.Context, m *model.Meetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetups[m.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *m
	s.meetups[m.ID] = &cp
	return nil
}

func (s *memStore) Close(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetups[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Closed = true
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetups[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.meetups, id)
	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.MeetupID != id {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
	return nil
}

func (s *memStore) ListBetween(_ context.Context, start, end time.Time, limit, offset int) ([]model.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBetween = [2]time.Time{start, end}
	s.lastLimitOff = [2]int{limit, offset}
	var out []model.Meetup
	for _, m := range s.meetups {
		if !m.Date.Before(start) && !m.Date.After(end) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListByOwner(_ context.Context, ownerID string) ([]model.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Meetup
	for _, m := range s.meetups {
		if m.OwnerID == ownerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memStore) FindSubscription(_ context.Context, userID, meetupID string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.skipFind {
		return nil, nil
	}
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.MeetupID == meetupID {
			cp := sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindConflicting(_ context.Context, userID string, hourStart, hourEnd time.Time) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastWindow = [2]time.Time{hourStart, hourEnd}
	if s.skipFind {
		return nil, nil
	}
	for _, sub := range s.subs {
		if sub.UserID != userID {
			continue
		}
		m, ok := s.meetups[sub.MeetupID]
		if ok && !m.Date.Before(hourStart) && !m.Date.After(hourEnd) {
			cp := sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertSubscription(_ context.Context, userID, meetupID string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.MeetupID == meetupID {
			return nil, repository.ErrDuplicate
		}
	}
	sub := model.Subscription{ID: uuid.NewString(), UserID: userID, MeetupID: meetupID, CreatedAt: time.Now()}
	s.subs = append(s.subs, sub)
	return &sub, nil
}

func (s *memStore) ListActive(_ context.Context, userID string, now time.Time) ([]model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Subscription
	for _, sub := range s.subs {
		m, ok := s.meetups[sub.MeetupID]
		if sub.UserID != userID || !ok || m.Closed || m.Date.Before(now) {
			continue
		}
		cp := sub
		mc := *m
		cp.Meetup = &mc
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Meetup.Date.Before(out[j].Meetup.Date) })
	return out, nil
}

// recordingNotifier keeps every notification it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	sent   []model.Notification
	refuse bool
}

func (n *recordingNotifier) Enqueue(msg model.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.refuse {
		return false
	}
	n.sent = append(n.sent, msg)
	return true
}

func (n *recordingNotifier) all() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.sent...)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) SubscribeOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[outcome]++
}
