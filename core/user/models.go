package user

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

// Role is the closed set of account roles known to the portal.
type Role string

// Roles
const (
	RoleStudent         Role = "student"
	RoleTeacher         Role = "teacher"
	RoleTeacherPending  Role = "teacher_pending"
	RoleTeacherRejected Role = "teacher_rejected"
	RoleAdmin           Role = "admin"
)

var (
	AllRoles = []Role{RoleStudent, RoleTeacher, RoleTeacherPending, RoleTeacherRejected, RoleAdmin}

	ErrUnknownRole = errors.New("unknown role")
)

func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.Valid() {
		return "", errors.Wrapf(ErrUnknownRole, "%q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Cacheable reports whether a user with this role may be mirrored in session storage.
func (r Role) Cacheable() bool {
	return r == RoleStudent || r == RoleTeacher
}

// RoleVisitor handles every Role variant; adding a Role breaks every implementation until handled.
type RoleVisitor interface {
	VisitStudent(usr User) error
	VisitTeacher(usr User) error
	VisitPendingTeacher(usr User) error
	VisitRejectedTeacher(usr User) error
	VisitAdmin(usr User) error
}

type User struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      Role            `json:"role"`
	CreatedAt *core.Timestamp `json:"createdAt,omitempty"`
}

// Accept dispatches to the visitor method matching the user's role.
func (u User) Accept(v RoleVisitor) error {
	switch u.Role {
	case RoleStudent:
		return v.VisitStudent(u)
	case RoleTeacher:
		return v.VisitTeacher(u)
	case RoleTeacherPending:
		return v.VisitPendingTeacher(u)
	case RoleTeacherRejected:
		return v.VisitRejectedTeacher(u)
	case RoleAdmin:
		return v.VisitAdmin(u)
	default:
		return errors.Wrapf(ErrUnknownRole, "%q", u.Role)
	}
}

func (u User) Is(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// FirstName returns the first word of the user's name.
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Credentials contains information needed to log a User in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// Registration contains information needed to create a new User.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}
