package models

import "time"

type NotificationType string

const (
	NotificationEventUpdate      NotificationType = "event_update"
	NotificationEventReminder    NotificationType = "event_reminder"
	NotificationRSVPConfirmation NotificationType = "rsvp_confirmation"
	NotificationEventCancelled   NotificationType = "event_cancelled"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user"`
	EventID   string           `json:"event"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
