package dashboard

import (
	"github.com/trezcool/classroom/core/user"
)

// Home returns the dashboard of `usr`'s role.
func Home(usr user.User, deps Deps) (Dashboard, error) {
	b := &builder{deps: deps.withDefaults()}
	if err := usr.Accept(b); err != nil {
		return nil, err
	}
	return b.dash, nil
}

type builder struct {
	deps Deps
	dash Dashboard
}

var _ user.RoleVisitor = (*builder)(nil)

func (b *builder) VisitStudent(usr user.User) error {
	b.dash = NewStudent(usr, b.deps)
	return nil
}

func (b *builder) VisitTeacher(usr user.User) error {
	b.dash = NewTeacher(usr, b.deps)
	return nil
}

func (b *builder) VisitPendingTeacher(usr user.User) error {
	b.dash = NewPending(usr)
	return nil
}

func (b *builder) VisitRejectedTeacher(usr user.User) error {
	b.dash = NewRejected(usr, b.deps)
	return nil
}

func (b *builder) VisitAdmin(usr user.User) error {
	b.dash = NewAdmin(usr, b.deps)
	return nil
}
