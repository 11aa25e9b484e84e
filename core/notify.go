package core

import "time"

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"

	DefaultNotificationDuration = 1500 * time.Millisecond

	somethingWentWrong = "Something went wrong"
)

// Notification is a short-lived message surfaced to the user after an action.
type Notification struct {
	Variant     string        `json:"variant"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"duration"`
}

// Notifier is any service that can surface notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

func Success(description string) Notification {
	return Notification{
		Variant:     VariantDefault,
		Title:       "Success",
		Description: description,
		Duration:    DefaultNotificationDuration,
	}
}

// Failure builds a destructive notification carrying err's message.
func Failure(err error) Notification {
	desc := somethingWentWrong
	if err != nil && err.Error() != "" {
		desc = err.Error()
	}
	return FailureMsg(desc)
}

func FailureMsg(description string) Notification {
	return Notification{
		Variant:     VariantDestructive,
		Title:       "Error",
		Description: description,
		Duration:    DefaultNotificationDuration,
	}
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
