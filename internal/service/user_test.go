package service

import (
	"context"
	"testing"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegister(t *testing.T) {
	svc := NewUserService(newMemStore())
	ctx := context.Background()

	u, err := svc.Register(ctx, model.RegisterUserRequest{Name: " Alice ", Email: "Alice@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = svc.Register(ctx, model.RegisterUserRequest{Name: "Other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRegister_Validation(t *testing.T) {
	svc := NewUserService(newMemStore())

	tests := []model.RegisterUserRequest{
		{Name: "", Email: "a@b.co"},
		{Name: "A", Email: ""},
		{Name: "A", Email: "no-at-sign"},
		{Name: "A", Email: "a@localhost"},
		{Name: "A", Email: "@b.co"},
	}
	for _, req := range tests {
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidationFailed, "%+v", req)
	}
}

func TestErrorIs_MatchesKind(t *testing.T) {
	err := validationError("title is required")

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NotErrorIs(t, err, ErrPastDate)
	assert.Equal(t, "title is required", err.Error())
}
