package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/backend/internal/config"
	"github.com/campusconnect/backend/internal/models"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := OpenSQL(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.FindUserByEnrollment(ctx, "E1")
	require.ErrorIs(t, err, ErrNotFound)

	user := &models.User{Name: "A", Enrollment: "E1", Email: "a@x.com", PasswordHash: "h", Role: models.RoleStudent}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := s.FindUserByEnrollment(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	got, err = s.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, got.Role)

	_, err = s.FindUserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreEventsLimit(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateEvent(ctx, &models.Event{Title: fmt.Sprintf("T%d", i)}))
	}

	n, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	events, err := s.ListEvents(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	for _, e := range events {
		assert.NotEmpty(t, e.ID)
	}
}

func TestSQLStoreListEventsEmpty(t *testing.T) {
	events, err := newSQLiteStore(t).ListEvents(context.Background(), 50)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestSQLStoreRegistrations(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.FindRegistration(ctx, "u1", "e1")
	require.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC()
	reg := &models.Registration{UserID: "u1", EventID: "e1", Timestamp: now}
	require.NoError(t, s.CreateRegistration(ctx, reg))

	got, err := s.FindRegistration(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
	assert.WithinDuration(t, now, got.Timestamp, time.Second)

	_, err = s.FindRegistration(ctx, "u1", "e2")
	require.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ?", "u1", "e1").
		Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestOpenSQLUnknownDriver(t *testing.T) {
	_, err := OpenSQL("mysql", "")
	require.Error(t, err)
}
