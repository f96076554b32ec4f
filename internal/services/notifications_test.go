package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/logging"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushCall struct {
	token, title string
	data         map[string]string
}

type fakePusher struct {
	mu    sync.Mutex
	calls []pushCall
	sent  chan struct{}
}

func (p *fakePusher) Send(_ context.Context, token, title, _ string, data map[string]string) error {
	p.mu.Lock()
	p.calls = append(p.calls, pushCall{token: token, title: title, data: data})
	p.mu.Unlock()
	p.sent <- struct{}{}
	return nil
}

func TestNotify_PushesWhenTokenRegistered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	push := &fakePusher{sent: make(chan struct{}, 4)}
	svc := NewNotificationService(e.db, push, logging.Discard())

	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	require.NoError(t, e.users.SetDeviceToken(ctx, alice.ID, "tok-alice"))

	n, err := svc.Notify(ctx, alice.ID, models.NotificationTaskAssigned, "New task", "Dishes", map[string]interface{}{"taskId": "t1"})
	require.NoError(t, err)
	require.NotNil(t, n.Metadata)
	assert.JSONEq(t, `{"taskId":"t1"}`, *n.Metadata)

	select {
	case <-push.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("push was not sent")
	}
	push.mu.Lock()
	require.Len(t, push.calls, 1)
	assert.Equal(t, "tok-alice", push.calls[0].token)
	assert.Equal(t, models.NotificationTaskAssigned, push.calls[0].data["type"])
	push.mu.Unlock()

	// No token, no push.
	_, err = svc.Notify(ctx, bob.ID, models.NotificationTaskAssigned, "New task", "Mop", nil)
	require.NoError(t, err)
	select {
	case <-push.sent:
		t.Fatal("unexpected push")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifications_ListAndRead(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")

	e.notifications.NotifyMany(ctx, []uuid.UUID{alice.ID, bob.ID, carol.ID}, alice.ID, models.NotificationMemberJoined, "Joined", "Alice joined", nil)
	_, err := e.notifications.Notify(ctx, bob.ID, models.NotificationTaskCompleted, "Done", "Dishes", nil)
	require.NoError(t, err)

	page, err := e.notifications.List(ctx, bob.ID, ParsePage("", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(2), page.Unread)
	require.Len(t, page.Notifications, 2)

	aliceNotes, err := e.notifications.List(ctx, alice.ID, ParsePage("1", "20"))
	require.NoError(t, err)
	assert.Zero(t, aliceNotes.Total)

	require.NoError(t, e.notifications.MarkRead(ctx, bob.ID, page.Notifications[0].ID))
	err = e.notifications.MarkRead(ctx, carol.ID, page.Notifications[1].ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	changed, err := e.notifications.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	page, err = e.notifications.List(ctx, bob.ID, ParsePage("", ""))
	require.NoError(t, err)
	assert.Zero(t, page.Unread)
}

func TestActivity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	f := e.family(t, alice)

	for i := 0; i < 3; i++ {
		target := uuid.New()
		require.NoError(t, e.activity.Log(ctx, f.ID, alice.ID, models.ActionTaskCreated, &target, map[string]interface{}{"title": "chore"}))
	}

	page, err := e.activity.List(ctx, alice.ID, f.ID, ParsePage("1", "2"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Activities, 2)
	require.NotNil(t, page.Activities[0].User)
	assert.Equal(t, "alice", page.Activities[0].User.Name)

	_, err = e.activity.List(ctx, bob.ID, f.ID, ParsePage("", ""))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, ParsePage("", ""))
	assert.Equal(t, Page{Page: 3, Limit: 50}, ParsePage("3", "50"))
	assert.Equal(t, Page{Page: 1, Limit: 20}, ParsePage("-2", "500"))
	assert.Equal(t, 40, ParsePage("3", "20").Offset())
}
