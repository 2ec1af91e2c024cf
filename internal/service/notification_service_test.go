package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/notify"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

func newNotificationServiceForTest(state *memState) *NotificationService {
	stores := storesFor(state)
	return NewNotificationService(NotificationDependencies{
		UnitOfWork:       &memUnitOfWork{state: state},
		NotificationRepo: stores.Notifications,
		Notifier:         notify.NewDispatcher(),
		Dispatcher:       events.NewInMemoryDispatcher(),
	})
}

func seedNotification(state *memState, id, audience string, read bool) {
	state.notifications = append(state.notifications, domain.Notification{
		ID:        id,
		EventType: string(events.EventClaimCreated),
		Message:   "Nuevo reclamo",
		Audience:  audience,
		Priority:  domain.PriorityNormal,
		Read:      read,
		CreatedAt: time.Now(),
	})
}

func TestAudiencesFor(t *testing.T) {
	staff := &domain.StaffUser{ID: "u1", Role: domain.StaffRoleOperator}
	assert.Equal(t, []string{"all", "role:operador", "user:u1"}, AudiencesFor(staff))
	assert.Equal(t, []string{"all"}, AudiencesFor(nil))
}

func TestListAndUnreadCount(t *testing.T) {
	state := newMemState()
	seedNotification(state, "n1", "all", false)
	seedNotification(state, "n2", "role:admin", false)
	seedNotification(state, "n3", "user:u1", true)
	svc := newNotificationServiceForTest(state)
	ctx := context.Background()

	operator := []string{"all", "role:operador", "user:u1"}
	list, err := svc.List(ctx, operator, false, 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	unread, err := svc.List(ctx, operator, true, 50, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	count, err := svc.UnreadCount(ctx, operator)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	admin := []string{"all", "role:admin"}
	count, err = svc.UnreadCount(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	state := newMemState()
	seedNotification(state, "n1", "all", false)
	seedNotification(state, "n2", "all", false)
	svc := newNotificationServiceForTest(state)
	ctx := context.Background()
	audiences := []string{"all"}

	require.NoError(t, svc.MarkRead(ctx, "n1", audiences))
	assert.True(t, state.notifications[0].Read)

	err := svc.MarkRead(ctx, "missing", audiences)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	affected, err := svc.MarkAllRead(ctx, audiences)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	count, err := svc.UnreadCount(ctx, audiences)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadHidesOtherAudiences(t *testing.T) {
	state := newMemState()
	seedNotification(state, "n1", "role:admin", false)
	seedNotification(state, "n2", "user:u2", false)
	seedNotification(state, "n3", "all", false)
	svc := newNotificationServiceForTest(state)
	ctx := context.Background()
	operator := []string{"all", "role:operador", "user:u1"}

	for _, id := range []string{"n1", "n2"} {
		err := svc.MarkRead(ctx, id, operator)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	}
	assert.False(t, state.notifications[0].Read)
	assert.False(t, state.notifications[1].Read)

	// broadcast rows are readable by anyone
	require.NoError(t, svc.MarkRead(ctx, "n3", operator))
	assert.True(t, state.notifications[2].Read)
}

func TestSendUrgentAlert(t *testing.T) {
	state := newMemState()
	svc := newNotificationServiceForTest(state)
	ctx := context.Background()

	notification, err := svc.SendUrgentAlert(ctx, "corte masivo en zona norte", "", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityCritical, notification.Priority)
	assert.Equal(t, domain.AudienceAll, notification.Audience)
	assert.Equal(t, "corte masivo en zona norte", notification.Message)
	assert.Len(t, state.notifications, 1)

	targeted, err := svc.SendUrgentAlert(ctx, "revisar nodo 4", "role:tecnico", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "role:tecnico", targeted.Audience)

	_, err = svc.SendUrgentAlert(ctx, "   ", "", "ADMIN")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
