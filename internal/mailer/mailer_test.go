package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func testMailer(t *testing.T, deliver func(context.Context, *mail.Msg) error) *Mailer {
	t.Helper()
	tpl, err := parseTemplates()
	require.NoError(t, err)
	return &Mailer{from: "Meetapp <noreply@meetapp.local>", templates: tpl, deliver: deliver}
}

func subscriptionNote() model.Notification {
	return model.Notification{
		To:       model.Contact{Name: "Alice", Email: "alice@example.com"},
		Subject:  "New subscription",
		Template: "subscription",
		Context: map[string]string{
			"organizer_name":   "Alice",
			"subscriber_name":  "Bob",
			"subscriber_email": "bob@example.com",
			"meetup_title":     "Go night",
		},
	}
}

func TestCompose(t *testing.T) {
	m := testMailer(t, nil)

	msg, err := m.Compose(subscriptionNote())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "Subject: New subscription")
	assert.Contains(t, out, "Hello Alice,")
	assert.Contains(t, out, "Bob <bob@example.com> subscribed to your meetup \"Go night\".")
}

func TestCompose_UnknownTemplate(t *testing.T) {
	m := testMailer(t, nil)
	n := subscriptionNote()
	n.Template = "welcome"

	_, err := m.Compose(n)
	assert.Error(t, err)
}

func TestSend(t *testing.T) {
	var got *mail.Msg
	m := testMailer(t, func(_ context.Context, msg *mail.Msg) error {
		got = msg
		return nil
	})

	require.NoError(t, m.Send(context.Background(), subscriptionNote()))
	assert.NotNil(t, got)
}

func TestSend_DeliveryError(t *testing.T) {
	boom := errors.New("connection refused")
	m := testMailer(t, func(context.Context, *mail.Msg) error { return boom })

	err := m.Send(context.Background(), subscriptionNote())
	assert.ErrorIs(t, err, boom)
}

func TestNew(t *testing.T) {
	m, err := New(Config{Host: "localhost", Port: 1025, From: "noreply@meetapp.local"})
	require.NoError(t, err)
	assert.NotNil(t, m.deliver)
}
