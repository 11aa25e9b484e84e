package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/teacher"
	"github.com/trezcool/classroom/core/user"
)

var ErrInvalidTransition = errors.New("a teacher can only be approved or rejected")

type AdminView struct {
	Kind     string                 `json:"kind"`
	User     user.User              `json:"user"`
	Counts   map[teacher.Status]int `json:"counts"`
	Status   teacher.Status         `json:"status"`
	Teachers []teacher.Application  `json:"teachers"`
}

type Admin struct {
	usr  user.User
	deps Deps

	mu       sync.RWMutex
	loaded   bool
	teachers []teacher.Application
}

func NewAdmin(usr user.User, deps Deps) *Admin {
	return &Admin{usr: usr, deps: deps.withDefaults()}
}

func (d *Admin) Kind() string { return KindAdmin }

func (d *Admin) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}

	return loading(d.deps.Store, func() error {
		apps, err := d.deps.API.GetAllTeacherStatus(ctx)
		if err != nil {
			d.deps.Notifier.Notify(core.Failure(err))
			return err
		}
		d.teachers = apps
		d.loaded = true
		return nil
	})
}

func (d *Admin) Teachers() []teacher.Application {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]teacher.Application(nil), d.teachers...)
}

func (d *Admin) Counts() map[teacher.Status]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return teacher.CountByStatus(d.teachers)
}

// View lists the applications with f.Status (Pending by default) whose name or email contains f.Term.
func (d *Admin) View(f Filter) (interface{}, error) {
	status := teacher.StatusPending
	if f.Status != "" {
		var err error
		if status, err = teacher.ParseStatus(f.Status); err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
		}
	}

	return AdminView{
		Kind:     KindAdmin,
		User:     d.usr,
		Counts:   d.Counts(),
		Status:   status,
		Teachers: teacher.Filter(d.Teachers(), status, f.Term),
	}, nil
}

func (d *Admin) Approve(ctx context.Context, id string) error {
	return d.SetStatus(ctx, id, teacher.StatusApproved)
}

func (d *Admin) Reject(ctx context.Context, id string) error {
	return d.SetStatus(ctx, id, teacher.StatusRejected)
}

// SetStatus approves or rejects the teacher `id`. The local list changes only once the backend agrees.
func (d *Admin) SetStatus(ctx context.Context, id string, status teacher.Status) error {
	var err error
	switch status {
	case teacher.StatusApproved:
		err = d.deps.API.ApproveTeacher(ctx, id)
	case teacher.StatusRejected:
		err = d.deps.API.RejectTeacher(ctx, id)
	default:
		err = ErrInvalidTransition
	}
	if err != nil {
		d.deps.Notifier.Notify(core.Failure(err))
		return err
	}

	d.mu.Lock()
	d.teachers, _ = teacher.SetStatus(d.teachers, id, status)
	d.mu.Unlock()
	return nil
}
