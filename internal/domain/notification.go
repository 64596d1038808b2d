package domain

import "time"

type NotificationType string

const (
	NotificationTypeLoan     NotificationType = "loan"
	NotificationTypeSettings NotificationType = "settings"
	NotificationTypeDamage   NotificationType = "damage"
	NotificationTypeSystem   NotificationType = "system"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// NotificationResponse is one feedback entry appended by a recipient.
type NotificationResponse struct {
	UserID    string    `json:"userId"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// SystemNotification is an in-app message. SentTo is fixed at creation;
// ReadBy and Responses only ever grow.
type SystemNotification struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Type      NotificationType       `json:"type"`
	Priority  NotificationPriority   `json:"priority"`
	CreatedBy string                 `json:"createdBy"`
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt *time.Time             `json:"expiresAt,omitempty"`
	SentTo    []string               `json:"sentTo"`
	ReadBy    []string               `json:"readBy"`
	Responses []NotificationResponse `json:"responses,omitempty"`
}
