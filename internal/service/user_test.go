package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(username string) types.RegisterRequest {
	return types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.users.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice", created.Username)

	token, err := e.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = e.users.Register(ctx, registerRequest("alice"))
	fields := validationFields(t, err)
	assert.Equal(t, []string{"This email is already in use."}, fields["email"])
	assert.Equal(t, []string{"This username is already taken."}, fields["username"])
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)

	req := registerRequest("bad name!")
	req.Email = "not-an-email"
	req.Password = "short"
	req.FirstName = ""

	_, err := e.users.Register(context.Background(), req)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Equal(t, []string{service.FieldRequired}, fields["first_name"])
}

func TestSetPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created, err := e.users.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	viewer := service.Viewer{UserID: created.ID}

	err = e.users.SetPassword(ctx, viewer, types.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "another-pass"})
	assert.Contains(t, validationFields(t, err), "current_password")

	require.NoError(t, e.users.SetPassword(ctx, viewer, types.SetPasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "another-pass"}))

	_, err = e.auth.Login(ctx, "alice@example.com", "another-pass")
	require.NoError(t, err)
}

func TestListAndGetUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := e.users.Register(ctx, registerRequest(name))
		require.NoError(t, err)
	}

	views, total, err := e.users.List(ctx, service.Viewer{}, repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, views, 2)
	assert.Equal(t, "alice", views[0].Username)

	_, err = e.users.Get(ctx, service.Viewer{}, 999)
	var nf *service.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
