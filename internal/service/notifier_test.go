package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"referral-server/internal/model"
)

func namedUser(id, email string) model.User {
	return model.User{
		BaseModel: model.BaseModel{ID: id},
		Email:     email,
	}
}

func TestFallbackToEveryone(t *testing.T) {
	focal := []model.User{namedUser("u-1", "fp@example.com")}
	everyone := []model.User{
		namedUser("u-1", "fp@example.com"),
		namedUser("u-2", "admin@example.com"),
		namedUser("u-3", "cs@example.com"),
	}
	loaderCalled := false
	loader := func() []model.User {
		loaderCalled = true
		return everyone
	}

	got := fallbackToEveryone(focal, loader)
	assert.Equal(t, focal, got)
	assert.False(t, loaderCalled, "loader must not run when focal persons exist")

	got = fallbackToEveryone(nil, loader)
	assert.True(t, loaderCalled)
	assert.Len(t, got, 3, "with no focal persons every active user is notified")
}

func TestDedupeUsers(t *testing.T) {
	users := []model.User{
		namedUser("u-1", "a@example.com"),
		namedUser("u-2", "b@example.com"),
		namedUser("u-1", "a@example.com"),
		namedUser("u-3", "c@example.com"),
	}

	out := dedupeUsers(users, "u-2")
	assert.Len(t, out, 2)
	assert.Equal(t, "u-1", out[0].ID)
	assert.Equal(t, "u-3", out[1].ID)
}

func TestUserEmails(t *testing.T) {
	users := []model.User{
		namedUser("u-1", "a@example.com"),
		namedUser("u-2", ""),
		namedUser("u-3", "c@example.com"),
	}
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, userEmails(users))
}
