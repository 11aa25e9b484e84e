package dashboard

import (
	"context"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
)

const (
	pendingTitle   = "Your account is pending authorization"
	pendingMessage = "Thank you for registering as a teacher. An administrator will review your application shortly."

	rejectedTitle   = "We're sorry, but your teacher account application was not approved"
	rejectedMessage = "Unfortunately, we were unable to approve your application to become a teacher on our platform."
	deleteWarning   = "This action cannot be undone. This will permanently delete your account and remove your data from our servers."

	deletedMsg      = "Deletion Successful!"
	deleteFailedMsg = "Unable to delete user."
)

// MessageView is a static page with an optional list of available actions.
type MessageView struct {
	Kind    string    `json:"kind"`
	User    user.User `json:"user"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Warning string    `json:"warning,omitempty"`
	Actions []string  `json:"actions"`
}

type Pending struct {
	usr user.User
}

func NewPending(usr user.User) *Pending {
	return &Pending{usr: usr}
}

func (d *Pending) Kind() string { return KindPendingTeacher }

func (d *Pending) Load(context.Context) error { return nil }

func (d *Pending) View(Filter) (interface{}, error) {
	return MessageView{Kind: KindPendingTeacher, User: d.usr, Title: pendingTitle, Message: pendingMessage, Actions: []string{}}, nil
}

type Rejected struct {
	usr  user.User
	deps Deps
}

func NewRejected(usr user.User, deps Deps) *Rejected {
	return &Rejected{usr: usr, deps: deps.withDefaults()}
}

func (d *Rejected) Kind() string { return KindRejectedTeacher }

func (d *Rejected) Load(context.Context) error { return nil }

func (d *Rejected) View(Filter) (interface{}, error) {
	return MessageView{
		Kind:    KindRejectedTeacher,
		User:    d.usr,
		Title:   rejectedTitle,
		Message: rejectedMessage,
		Warning: deleteWarning,
		Actions: []string{"delete-account"},
	}, nil
}

// DeleteAccount deletes the user's account then logs them out.
// It returns the route to redirect to.
func (d *Rejected) DeleteAccount(ctx context.Context) (string, error) {
	if err := d.deps.API.DeleteUser(ctx); err != nil {
		d.deps.Notifier.Notify(core.FailureMsg(deleteFailedMsg))
		return "", err
	}

	d.deps.Store.DispatchUser(user.LogoutUser{})
	if d.deps.Storage != nil {
		if err := session.Logout(ctx, d.deps.Storage); err != nil {
			d.deps.Notifier.Notify(core.Failure(err))
			return "", err
		}
	}
	d.deps.Notifier.Notify(core.Success(deletedMsg))
	return session.LoginRoute, nil
}
