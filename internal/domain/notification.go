package domain

const (
	NotificationWelcome               = "welcome"
	NotificationRegistrationConfirmed = "registration_confirmed"
	NotificationRegistrationCancelled = "registration_cancelled"
)

// Notification is a mail message. Body is plain text; HTMLBody, when set, is
// sent as its alternative part.
type Notification struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"html_body,omitempty"`
}
