package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementBadge_CountsUpAndNormalizes(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	seedUser(t, db, "chef@example.com", "chef")

	require.NoError(t, svc.IncrementBadge("chef@example.com", "Master Chef"))
	require.NoError(t, svc.IncrementBadge("chef@example.com", "  master chef "))

	user, err := svc.GetByEmail("chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, user.Badges["master chef"])
}

func TestIncrementBadge_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	err := svc.IncrementBadge("nobody@example.com", "Master Chef")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUsername_FallsBackToEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	seedUser(t, db, "chef@example.com", "chef")

	assert.Equal(t, "chef", svc.GetUsername("chef@example.com"))
	assert.Equal(t, "ghost@example.com", svc.GetUsername("ghost@example.com"))
}
