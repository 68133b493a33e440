package models

import "time"

type NotificationType string

const (
	NotificationTask    NotificationType = "task"
	NotificationLive    NotificationType = "live"
	NotificationGeneric NotificationType = "generic"
)

// Notification is an in-app notice for one recipient.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient"`
	ActorID     *uint            `json:"actor"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	Type        NotificationType `gorm:"column:notif_type;size:20;not null" json:"notif_type"`
	URL         string           `gorm:"size:512" json:"url"`
	IsRead      bool             `gorm:"not null" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
