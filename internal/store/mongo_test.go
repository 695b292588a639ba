package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/campusconnect/backend/internal/models"
)

func newMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := OpenMongo(ctx, uri, "campusconnect_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestMongoStore(t *testing.T) {
	ctx := context.Background()
	s := newMongoStore(t)

	_, err := s.FindUserByEnrollment(ctx, "E1")
	require.ErrorIs(t, err, ErrNotFound)

	user := &models.User{Name: "A", Enrollment: "E1", Email: "a@x.com", PasswordHash: "h", Role: models.RoleStudent}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.Len(t, user.ID, 24)

	got, err := s.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "E1", got.Enrollment)
	assert.Equal(t, models.RoleStudent, got.Role)

	event := &models.Event{Title: "T", Date: "2025-01-01", Description: "D"}
	require.NoError(t, s.CreateEvent(ctx, event))

	events, err := s.ListEvents(ctx, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)

	n, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.FindRegistration(ctx, user.ID, event.ID)
	require.ErrorIs(t, err, ErrNotFound)

	reg := &models.Registration{UserID: user.ID, EventID: event.ID, Timestamp: time.Now().UTC()}
	require.NoError(t, s.CreateRegistration(ctx, reg))

	found, err := s.FindRegistration(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, found.ID)
}

func TestMongoStoreRejectsMalformedIDs(t *testing.T) {
	ctx := context.Background()
	s := newMongoStore(t)

	_, err := s.FindUserByID(ctx, "not-an-object-id")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.FindRegistration(ctx, "0123456789abcdef01234567", "nope")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
