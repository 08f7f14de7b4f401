package realm

// NotificationType grades a per-turn notification.
type NotificationType string

const (
	NotifyInfo     NotificationType = "INFO"
	NotifySuccess  NotificationType = "SUCCESS"
	NotifyWarning  NotificationType = "WARNING"
	NotifyCritical NotificationType = "CRITICAL"
	NotifyError    NotificationType = "ERROR"
)

// Notification is a short message surfaced to the player after turn
// processing. Notifications are advisory; they never carry errors that
// abort a turn.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}
