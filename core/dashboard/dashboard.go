// Package dashboard holds the role-specific views of the home page and the actions they offer.
package dashboard

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/teacher"
)

// Kinds of dashboards
const (
	KindStudent         = "student"
	KindTeacher         = "teacher"
	KindPendingTeacher  = "teacher_pending"
	KindRejectedTeacher = "teacher_rejected"
	KindAdmin           = "admin"
)

type StudentAPI interface {
	GetAssignments(ctx context.Context) ([]assignment.StudentAssignment, error)
	CreateAndGradeSubmission(ctx context.Context, draft submission.Draft) (submission.Submission, error)
}

type TeacherAPI interface {
	GetAllAssignments(ctx context.Context) ([]assignment.Assignment, error)
	GetAllStudents(ctx context.Context) ([]submission.Student, error)
	GetAllSubmissions(ctx context.Context) ([]submission.Submission, error)
	CreateAssignment(ctx context.Context, draft assignment.Draft) (assignment.Assignment, error)
	EditAssignment(ctx context.Context, a assignment.Assignment) error
}

type AdminAPI interface {
	GetAllTeacherStatus(ctx context.Context) ([]teacher.Application, error)
	ApproveTeacher(ctx context.Context, id string) error
	RejectTeacher(ctx context.Context, id string) error
}

type AccountAPI interface {
	DeleteUser(ctx context.Context) error
}

// API is everything the dashboards need from the backend.
type API interface {
	StudentAPI
	TeacherAPI
	AdminAPI
	AccountAPI
}

type Deps struct {
	API        API
	Store      *session.Store
	Storage    session.Storage
	Notifier   core.Notifier
	Validate   *validator.Validate
	Translator ut.Translator
	Now        func() time.Time // defaults to time.Now
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = core.NopNotifier{}
	}
	if d.Store == nil {
		d.Store = session.NewStore()
	}
	if d.Validate == nil {
		d.Validate, d.Translator = core.NewValidator()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Filter narrows the rows of a dashboard view. Unset fields keep every row.
type Filter struct {
	Status string `query:"status"`
	Column string `query:"column"`
	Term   string `query:"q"`
}

// Dashboard is the home view of one role.
type Dashboard interface {
	Kind() string
	// Load fetches the dashboard data. Only the first successful call hits the backend.
	Load(ctx context.Context) error
	View(f Filter) (interface{}, error)
}

// loading wraps fn with the loader actions.
func loading(store *session.Store, fn func() error) error {
	store.DispatchLoader(session.ShowLoader)
	defer store.DispatchLoader(session.HideLoader)
	return fn()
}
