package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"event_management/internal/domain"
)

//go:embed mail/*.html
var mailFS embed.FS

var mailTemplates = template.Must(template.ParseFS(mailFS, "mail/*.html"))

// renderHTML returns the HTML alternative for a message. Mail still goes out
// as plain text when rendering fails, so the error only empties the part.
func renderHTML(name string, data any) string {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return buf.String()
}

func Welcome(user *domain.User) domain.Notification {
	return domain.Notification{
		Kind:    domain.NotificationWelcome,
		To:      user.Email,
		Subject: "Welcome to Event Management",
		Body: fmt.Sprintf("Hello %s,\n\nyour %s account %q is ready. You can now sign in and browse events.\n",
			user.FullName(), user.Role, user.Username),
		HTMLBody: renderHTML("welcome.html", map[string]string{
			"Name":     user.FullName(),
			"Role":     user.Role,
			"Username": user.Username,
		}),
	}
}

func RegistrationConfirmed(user *domain.User, event *domain.Event, baseURL string) domain.Notification {
	url := fmt.Sprintf("%s/events/%s", baseURL, event.ID)
	date := event.StartDate.Format(domain.DateLayout)
	return domain.Notification{
		Kind:    domain.NotificationRegistrationConfirmed,
		To:      user.Email,
		Subject: "Registration confirmed: " + event.Title,
		Body: fmt.Sprintf("Hello %s,\n\nyou are registered for %q on %s at %s (%s).\n\nDetails: %s\n",
			user.FullName(), event.Title, date, event.StartTime, event.Location, url),
		HTMLBody: renderHTML("registration_confirmed.html", map[string]string{
			"Name":     user.FullName(),
			"Title":    event.Title,
			"Date":     date,
			"Time":     event.StartTime,
			"Location": event.Location,
			"URL":      url,
		}),
	}
}

func RegistrationCancelled(user *domain.User, event *domain.Event) domain.Notification {
	return domain.Notification{
		Kind:    domain.NotificationRegistrationCancelled,
		To:      user.Email,
		Subject: "Registration cancelled: " + event.Title,
		Body:    fmt.Sprintf("Hello %s,\n\nyour registration for %q has been cancelled.\n", user.FullName(), event.Title),
		HTMLBody: renderHTML("registration_cancelled.html", map[string]string{
			"Name":  user.FullName(),
			"Title": event.Title,
		}),
	}
}
