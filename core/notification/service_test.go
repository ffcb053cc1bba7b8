package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	testutil "github.com/trezcool/studymatch/tests"
)

func TestService_Notify(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, s.UserRepo, "Ada", "ada@uni.edu")

	tests := []struct {
		name       string
		typ        string
		wantErr    bool
		wantMailed bool
	}{
		{name: "unknown type", typ: "gossip", wantErr: true},
		{name: "not mailed", typ: notification.TypePointsEarned},
		{name: "mailed", typ: notification.TypeSessionConfirmed, wantMailed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Mail.Reset()
			notif, err := s.Notifications.Notify(ctx, notification.NewNotification{
				UserID:  usr.ID,
				Type:    tt.typ,
				Title:   "Title",
				Message: "Message",
				Link:    "/sessions",
			})
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.False(t, notif.IsRead)
			assert.Equal(t, usr.ID, notif.UserID)

			sent := s.Mail.SentMessages()
			if !tt.wantMailed {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			assert.Equal(t, usr.Email, sent[0].To[0].Address)
			assert.Contains(t, sent[0].TextContent, "Message")
		})
	}
}

func TestService_ReadState(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	ada := testutil.CreateUser(t, s.UserRepo, "Ada", "ada@uni.edu")
	bob := testutil.CreateUser(t, s.UserRepo, "Bob", "bob@uni.edu")

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return start }
	defer func() { core.NowFunc = time.Now }()

	var ids []string
	for i := 0; i < 3; i++ {
		core.NowFunc = func() time.Time { return start.Add(time.Duration(i) * time.Minute) }
		notif, err := s.Notifications.Notify(ctx, notification.NewNotification{UserID: ada.ID, Type: notification.TypeNewMessage, Title: "New Message"})
		require.NoError(t, err)
		ids = append(ids, notif.ID)
	}
	adaActor, bobActor := core.NewActor(ada.ID), core.NewActor(bob.ID)

	list, err := s.Notifications.ListForUser(ctx, adaActor)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID) // newest first

	count, err := s.Notifications.UnreadCount(ctx, adaActor)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// only the owner can mark it read
	_, err = s.Notifications.MarkRead(ctx, bobActor, ids[0])
	assert.True(t, core.IsNotFound(err))
	_, err = s.Notifications.MarkRead(ctx, adaActor, "unknown")
	assert.True(t, core.IsNotFound(err))

	for i := 0; i < 2; i++ { // idempotent
		notif, err := s.Notifications.MarkRead(ctx, adaActor, ids[0])
		require.NoError(t, err)
		assert.True(t, notif.IsRead)
	}
	count, err = s.Notifications.UnreadCount(ctx, adaActor)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	n, err := s.Notifications.MarkAllRead(ctx, adaActor)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	count, err = s.Notifications.UnreadCount(ctx, adaActor)
	require.NoError(t, err)
	assert.Zero(t, count)
}
