package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/repository"
)

// Dispatcher builds notification records for domain events and persists them
// through the store the caller provides. When the store is transaction-bound,
// the notification commits or rolls back together with the triggering
// operation; no operation is complete until its notification is durable.
type Dispatcher struct{}

// NewDispatcher constructs the dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Options override the per-event defaults.
type Options struct {
	Audience string
	Priority domain.NotificationPriority
}

// defaultAudience maps each event type to who hears about it unless the
// caller overrides.
func defaultAudience(eventType events.EventType) string {
	switch eventType {
	case events.EventDuplicateAttempt, events.EventClientAutoProvisioned:
		return domain.RoleAudience(domain.StaffRoleAdmin)
	default:
		return domain.AudienceAll
	}
}

// defaultPriority derives urgency from the event type.
func defaultPriority(eventType events.EventType) domain.NotificationPriority {
	switch eventType {
	case events.EventUrgentAlert:
		return domain.PriorityCritical
	case events.EventDuplicateAttempt:
		return domain.PriorityHigh
	default:
		return domain.PriorityNormal
	}
}

// Dispatch persists a notification for the event and returns it. The write
// goes through repo, which the caller scopes to its transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, repo repository.NotificationRepository, event events.Event, opts *Options) (*domain.Notification, error) {
	audience := defaultAudience(event.Type)
	priority := defaultPriority(event.Type)
	if opts != nil {
		if opts.Audience != "" {
			audience = opts.Audience
		}
		if opts.Priority != "" {
			priority = opts.Priority
		}
	}

	notification := &domain.Notification{
		ID:        uuid.NewString(),
		EventType: string(event.Type),
		Message:   messageFor(event),
		Audience:  audience,
		Priority:  priority,
		CreatedAt: event.Timestamp,
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if event.ClaimID != "" {
		claimID := event.ClaimID
		notification.ClaimID = &claimID
	}

	if err := repo.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func messageFor(event events.Event) string {
	switch payload := event.Payload.(type) {
	case events.ClaimCreatedPayload:
		return fmt.Sprintf("Nuevo reclamo %s - %s para cliente %s",
			event.ClaimID, payload.ClaimType, payload.ClientNumber)
	case events.StatusChangedPayload:
		return fmt.Sprintf("El reclamo %s cambió de estado: %s → %s",
			event.ClaimID, payload.OldStatus, payload.NewStatus)
	case events.DuplicateAttemptPayload:
		return fmt.Sprintf("Intento de reclamo duplicado para cliente %s, reclamos activos: %s",
			payload.ClientNumber, strings.Join(payload.ConflictingIDs, ", "))
	case events.ReassignedPayload:
		if payload.Technician != nil {
			return fmt.Sprintf("Reclamo %s reasignado a %s", event.ClaimID, *payload.Technician)
		}
		if payload.GroupName != nil {
			return fmt.Sprintf("Sector %s asignado a %s", payload.Sector, *payload.GroupName)
		}
		return fmt.Sprintf("Reclamo %s reasignado", event.ClaimID)
	case events.ClientAutoProvisionedPayload:
		return fmt.Sprintf("Cliente N° %s - %s creado desde reclamo",
			payload.ClientNumber, payload.Name)
	case events.UrgentAlertPayload:
		return payload.Message
	default:
		return string(event.Type)
	}
}
