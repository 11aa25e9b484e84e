package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrStudentNotFound    = errors.New("student not found")
)

const (
	assignmentCreatedMsg = "Assignment created successfully"
	assignmentUpdatedMsg = "Assignment updated successfully"
	createFailedMsg      = "Failed to create assignment"
	editFailedMsg        = "Failed to edit assignment"
)

type TeacherView struct {
	Kind        string                  `json:"kind"`
	User        user.User               `json:"user"`
	Assignments []assignment.Assignment `json:"assignments"`
	Students    []submission.Report     `json:"students"`
}

type Teacher struct {
	usr  user.User
	deps Deps

	mu          sync.RWMutex
	loaded      bool
	assignments []assignment.Assignment
	students    []submission.Student
	submissions []submission.Submission
}

func NewTeacher(usr user.User, deps Deps) *Teacher {
	return &Teacher{usr: usr, deps: deps.withDefaults()}
}

func (d *Teacher) Kind() string { return KindTeacher }

// Load fetches assignments, students and submissions; the first failure aborts.
func (d *Teacher) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}

	err := loading(d.deps.Store, func() error {
		assignments, err := d.deps.API.GetAllAssignments(ctx)
		if err != nil {
			return err
		}
		students, err := d.deps.API.GetAllStudents(ctx)
		if err != nil {
			return err
		}
		subs, err := d.deps.API.GetAllSubmissions(ctx)
		if err != nil {
			return err
		}
		d.assignments, d.students, d.submissions = assignments, students, subs
		d.loaded = true
		return nil
	})
	if err != nil {
		d.deps.Notifier.Notify(core.Failure(err))
	}
	return err
}

func (d *Teacher) Assignments() []assignment.Assignment {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]assignment.Assignment(nil), d.assignments...)
}

func (d *Teacher) Students() []submission.Student {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]submission.Student(nil), d.students...)
}

// Report returns the report of the student `id`, computed at the current time.
func (d *Teacher) Report(id string) (submission.Report, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, stdt := range d.students {
		if stdt.ID == id {
			return submission.BuildReport(stdt, d.assignments, d.submissions, d.deps.Now()), nil
		}
	}
	return submission.Report{}, errors.Wrapf(ErrStudentNotFound, "%q", id)
}

// View lists every assignment and the report of the students whose name or email contains f.Term.
func (d *Teacher) View(f Filter) (interface{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.deps.Now()
	reports := make([]submission.Report, 0, len(d.students))
	for _, stdt := range d.students {
		if f.Term != "" && !core.ContainsFold(stdt.Name, f.Term) && !core.ContainsFold(stdt.Email, f.Term) {
			continue
		}
		reports = append(reports, submission.BuildReport(stdt, d.assignments, d.submissions, now))
	}

	assignments := append([]assignment.Assignment{}, d.assignments...)
	return TeacherView{Kind: KindTeacher, User: d.usr, Assignments: assignments, Students: reports}, nil
}

// CreateAssignment validates `draft` then creates it. The new assignment is listed first.
func (d *Teacher) CreateAssignment(ctx context.Context, draft assignment.Draft) (assignment.Assignment, error) {
	if err := core.CheckValidation(draft.Validate(d.deps.Validate), d.deps.Translator); err != nil {
		d.deps.Notifier.Notify(core.Failure(err))
		return assignment.Assignment{}, err
	}

	created, err := d.deps.API.CreateAssignment(ctx, draft)
	if err != nil {
		d.deps.Notifier.Notify(core.FailureMsg(createFailedMsg))
		return assignment.Assignment{}, err
	}

	d.mu.Lock()
	d.assignments = assignment.Prepend(d.assignments, created)
	d.mu.Unlock()

	d.deps.Notifier.Notify(core.Success(assignmentCreatedMsg))
	return created, nil
}

// EditAssignment replaces the assignment `id` with `draft`.
func (d *Teacher) EditAssignment(ctx context.Context, id string, draft assignment.Draft) (assignment.Assignment, error) {
	if err := core.CheckValidation(draft.Validate(d.deps.Validate), d.deps.Translator); err != nil {
		d.deps.Notifier.Notify(core.Failure(err))
		return assignment.Assignment{}, err
	}

	d.mu.RLock()
	loaded := d.loaded
	_, known := assignment.Replace(d.assignments, assignment.Assignment{ID: id})
	d.mu.RUnlock()
	if loaded && !known {
		err := errors.Wrapf(ErrAssignmentNotFound, "%q", id)
		d.deps.Notifier.Notify(core.FailureMsg(editFailedMsg))
		return assignment.Assignment{}, err
	}

	updated := draft.Assignment(id)
	if err := d.deps.API.EditAssignment(ctx, updated); err != nil {
		d.deps.Notifier.Notify(core.FailureMsg(editFailedMsg))
		return assignment.Assignment{}, err
	}

	d.mu.Lock()
	d.assignments, _ = assignment.Replace(d.assignments, updated)
	d.mu.Unlock()

	d.deps.Notifier.Notify(core.Success(assignmentUpdatedMsg))
	return updated, nil
}
