package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/logger"
	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []model.Notification
	err     error
	release chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, n model.Notification) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type tally struct {
	mu sync.Mutex
	m  map[string]int
}

func (t *tally) NotificationResult(outcome string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = map[string]int{}
	}
	t.m[outcome]++
}

func (t *tally) get(k string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m[k]
}

func note(email string) model.Notification {
	return model.Notification{To: model.Contact{Name: "Org", Email: email}, Subject: "New subscription", Template: "subscription"}
}

func TestDispatcher_DeliversAll(t *testing.T) {
	sender := &fakeSender{}
	results := &tally{}
	d := NewDispatcher(sender, logger.Discard(), 16, 3, WithResultRecorder(results))
	d.Start(context.Background())

	for i := 0; i < 10; i++ {
		require.True(t, d.Enqueue(note("org@example.com")))
	}
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, 10, sender.count())
	assert.Equal(t, 10, results.get("sent"))
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	sender := &fakeSender{release: make(chan struct{})}
	results := &tally{}
	d := NewDispatcher(sender, logger.Discard(), 1, 1, WithResultRecorder(results))
	d.Start(context.Background())

	accepted := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			if d.Enqueue(note("org@example.com")) {
				accepted++
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked")
	}

	// One may be held by the worker and one by the buffer; the rest drop.
	assert.LessOrEqual(t, accepted, 2)
	assert.GreaterOrEqual(t, results.get("dropped"), 3)

	close(sender.release)
	require.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_FailureIsRecorded(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	results := &tally{}
	d := NewDispatcher(sender, logger.Discard(), 4, 1, WithResultRecorder(results))
	d.Start(context.Background())

	require.True(t, d.Enqueue(note("org@example.com")))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, 1, results.get("failed"))
	assert.Equal(t, 0, sender.count())
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, logger.Discard(), 4, 1)
	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))

	assert.False(t, d.Enqueue(note("org@example.com")))
	assert.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_StopHonoursDeadline(t *testing.T) {
	sender := &fakeSender{release: make(chan struct{})}
	d := NewDispatcher(sender, logger.Discard(), 4, 1, WithSendTimeout(time.Minute))
	d.Start(context.Background())
	require.True(t, d.Enqueue(note("org@example.com")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	close(sender.release)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{Log: logger.Discard()}.Send(context.Background(), note("x@example.com")))
}
