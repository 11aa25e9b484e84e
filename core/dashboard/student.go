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

const submittedMsg = "Assignment submitted successfully"

type StudentView struct {
	Kind        string                         `json:"kind"`
	User        user.User                      `json:"user"`
	Stats       assignment.Stats               `json:"stats"`
	Assignments []assignment.StudentAssignment `json:"assignments"`
}

type Student struct {
	usr  user.User
	deps Deps

	mu     sync.RWMutex
	loaded bool
	items  []assignment.StudentAssignment
}

func NewStudent(usr user.User, deps Deps) *Student {
	return &Student{usr: usr, deps: deps.withDefaults()}
}

func (d *Student) Kind() string { return KindStudent }

func (d *Student) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}

	return loading(d.deps.Store, func() error {
		items, err := d.deps.API.GetAssignments(ctx)
		if err != nil {
			d.deps.Notifier.Notify(core.Failure(err))
			return err
		}
		d.items = items
		d.loaded = true
		return nil
	})
}

func (d *Student) Assignments() []assignment.StudentAssignment {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]assignment.StudentAssignment(nil), d.items...)
}

func (d *Student) Stats() assignment.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return assignment.ComputeStats(d.items)
}

// View lists the assignments matching `f`; stats always cover every assignment.
func (d *Student) View(f Filter) (interface{}, error) {
	items := d.Assignments()
	if f.Status != "" {
		status, err := parseAssignmentStatus(f.Status)
		if err != nil {
			return nil, err
		}
		items = assignment.FilterByStatus(items, status)
	}
	col, err := assignment.ParseColumn(f.Column)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "column", Error: err.Error()})
	}
	items = assignment.Search(items, col, f.Term)
	if items == nil {
		items = []assignment.StudentAssignment{}
	}

	return StudentView{
		Kind:        KindStudent,
		User:        d.usr,
		Stats:       d.Stats(),
		Assignments: items,
	}, nil
}

func parseAssignmentStatus(s string) (assignment.Status, error) {
	for _, st := range assignment.AllStatuses {
		if core.CleanString(s, true) == core.CleanString(string(st), true) {
			return st, nil
		}
	}
	err := errors.Errorf("unknown status %q", s)
	return "", core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
}

// Submit sends the GitHub link of the student's work on `assignmentID` for grading.
func (d *Student) Submit(ctx context.Context, assignmentID, githubLink string) (submission.Submission, error) {
	draft := submission.Draft{AssignmentID: assignmentID, StudentID: d.usr.ID, GitHubLink: githubLink}
	if err := core.CheckValidation(draft.Validate(d.deps.Validate), d.deps.Translator); err != nil {
		d.deps.Notifier.Notify(core.Failure(err))
		return submission.Submission{}, err
	}

	sub, err := d.deps.API.CreateAndGradeSubmission(ctx, draft)
	if err != nil {
		d.deps.Notifier.Notify(core.Failure(err))
		return submission.Submission{}, err
	}

	d.mu.Lock()
	for i := range d.items {
		if d.items[i].ID == assignmentID {
			d.items[i].Status = assignment.StatusCompleted
			d.items[i].YourScore = sub.Score
		}
	}
	d.mu.Unlock()

	d.deps.Notifier.Notify(core.Success(submittedMsg))
	return sub, nil
}
