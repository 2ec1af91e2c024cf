package domain

import "time"

// NotificationPriority enumerates delivery urgency.
type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "LOW"
	PriorityNormal   NotificationPriority = "NORMAL"
	PriorityHigh     NotificationPriority = "HIGH"
	PriorityCritical NotificationPriority = "CRITICAL"
)

// Audience values: "all", "role:<role>" or "user:<id>".
const AudienceAll = "all"

// RoleAudience builds an audience selector for a staff role.
func RoleAudience(role StaffRole) string {
	return "role:" + string(role)
}

// UserAudience builds an audience selector for a single user.
func UserAudience(userID string) string {
	return "user:" + userID
}

// Notification is a persisted fan-out record for a domain event. Only the
// read flag is ever mutated after creation.
type Notification struct {
	ID        string
	EventType string
	Message   string
	Audience  string
	Priority  NotificationPriority
	Read      bool
	ClaimID   *string
	CreatedAt time.Time
}
