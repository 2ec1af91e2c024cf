package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/notify"
	"github.com/cablesur/claims-service/internal/repository"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// NotificationService serves the in-app notification feed.
type NotificationService struct {
	uow           repository.UnitOfWork
	notifications repository.NotificationRepository
	notifier      *notify.Dispatcher
	dispatcher    events.Dispatcher
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	UnitOfWork       repository.UnitOfWork
	NotificationRepo repository.NotificationRepository
	Notifier         *notify.Dispatcher
	Dispatcher       events.Dispatcher
	Cache            *redis.Client
	CacheTTL         time.Duration
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &NotificationService{
		uow:           deps.UnitOfWork,
		notifications: deps.NotificationRepo,
		notifier:      deps.Notifier,
		dispatcher:    deps.Dispatcher,
		cache:         deps.Cache,
		cacheTTL:      ttl,
		logger:        logger,
		now:           time.Now,
	}
}

// AudiencesFor expands a staff user into the audience selectors that address
// them: the broadcast channel, their role channel and their personal channel.
func AudiencesFor(user *domain.StaffUser) []string {
	if user == nil {
		return []string{domain.AudienceAll}
	}
	return []string{
		domain.AudienceAll,
		domain.RoleAudience(user.Role),
		domain.UserAudience(user.ID),
	}
}

// List returns notifications visible to the given audiences, newest first.
func (s *NotificationService) List(ctx context.Context, audiences []string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	list, err := s.notifications.ListByAudience(ctx, audiences, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// MarkRead flags a single notification as read. Notifications addressed to
// another audience are invisible to the caller and reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, id string, audiences []string) error {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !audienceMatches(notification.Audience, audiences) {
		return apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
	}
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidateUnread(ctx, audiences)
	return nil
}

func audienceMatches(audience string, audiences []string) bool {
	if audience == domain.AudienceAll {
		return true
	}
	for _, a := range audiences {
		if a == audience {
			return true
		}
	}
	return false
}

// MarkAllRead flags every unread notification for the audiences and returns
// how many were affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, audiences []string) (int64, error) {
	affected, err := s.notifications.MarkAllRead(ctx, audiences)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.invalidateUnread(ctx, audiences)
	return affected, nil
}

// UnreadCount returns the unread badge count, cached in Redis for a short
// TTL. Freshly dispatched notifications may be invisible until the entry
// expires; marking read invalidates immediately.
func (s *NotificationService) UnreadCount(ctx context.Context, audiences []string) (int, error) {
	key := s.unreadKey(audiences)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			if count, convErr := strconv.Atoi(cached); convErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifications.CountUnread(ctx, audiences)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.Itoa(count), s.cacheTTL).Err(); err != nil {
			s.logger.Warn("unread count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

// SendUrgentAlert broadcasts a critical notification. The alert is durable
// before the call returns.
func (s *NotificationService) SendUrgentAlert(ctx context.Context, message, audience, actor string) (*domain.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("alert message is required", nil)
	}

	var (
		notification *domain.Notification
		event        events.Event
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		event = events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUrgentAlert,
			Actor:     actor,
			Timestamp: s.now(),
			Payload:   events.UrgentAlertPayload{Message: message},
		}
		var opts *notify.Options
		if audience != "" {
			opts = &notify.Options{Audience: audience}
		}
		created, err := s.notifier.Dispatch(ctx, stores.Notifications, event, opts)
		if err != nil {
			return err
		}
		notification = created
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
	return notification, nil
}

// RegisterHandlers attaches post-commit observers: structured logging per
// event type. Durable notification rows are written in-transaction by the
// services themselves, so these handlers only observe.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	logEvent := func(ctx context.Context, event events.Event) error {
		s.logger.Info("domain event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("claim_id", event.ClaimID),
			zap.String("actor", event.Actor),
		)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventClaimCreated,
		events.EventStatusChanged,
		events.EventDuplicateAttempt,
		events.EventReassigned,
		events.EventClientAutoProvisioned,
		events.EventUrgentAlert,
	} {
		dispatcher.Subscribe(eventType, logEvent)
	}
}

func (s *NotificationService) unreadKey(audiences []string) string {
	joined := strings.Join(audiences, ",")
	if joined == "" {
		joined = domain.AudienceAll
	}
	return "notifications:unread:" + joined
}

func (s *NotificationService) invalidateUnread(ctx context.Context, audiences []string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.unreadKey(audiences)).Err(); err != nil {
		s.logger.Warn("unread count cache invalidation failed", zap.Error(err))
	}
}
