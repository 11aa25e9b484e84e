package dashboard

import (
	"context"
	"sync"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/teacher"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	errs  map[string]error

	studentAssignments []assignment.StudentAssignment
	assignments        []assignment.Assignment
	students           []submission.Student
	submissions        []submission.Submission
	teachers           []teacher.Application

	graded  submission.Submission
	created assignment.Assignment
	edited  []assignment.Assignment
	drafts  []submission.Draft
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int), errs: make(map[string]error)}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) GetAssignments(context.Context) ([]assignment.StudentAssignment, error) {
	if err := f.record("GetAssignments"); err != nil {
		return nil, err
	}
	return f.studentAssignments, nil
}

func (f *fakeAPI) CreateAndGradeSubmission(_ context.Context, d submission.Draft) (submission.Submission, error) {
	if err := f.record("CreateAndGradeSubmission"); err != nil {
		return submission.Submission{}, err
	}
	f.drafts = append(f.drafts, d)
	return f.graded, nil
}

func (f *fakeAPI) GetAllAssignments(context.Context) ([]assignment.Assignment, error) {
	if err := f.record("GetAllAssignments"); err != nil {
		return nil, err
	}
	return f.assignments, nil
}

func (f *fakeAPI) GetAllStudents(context.Context) ([]submission.Student, error) {
	if err := f.record("GetAllStudents"); err != nil {
		return nil, err
	}
	return f.students, nil
}

func (f *fakeAPI) GetAllSubmissions(context.Context) ([]submission.Submission, error) {
	if err := f.record("GetAllSubmissions"); err != nil {
		return nil, err
	}
	return f.submissions, nil
}

func (f *fakeAPI) CreateAssignment(_ context.Context, d assignment.Draft) (assignment.Assignment, error) {
	if err := f.record("CreateAssignment"); err != nil {
		return assignment.Assignment{}, err
	}
	if f.created.ID == "" {
		return d.Assignment("new"), nil
	}
	return f.created, nil
}

func (f *fakeAPI) EditAssignment(_ context.Context, a assignment.Assignment) error {
	if err := f.record("EditAssignment"); err != nil {
		return err
	}
	f.edited = append(f.edited, a)
	return nil
}

func (f *fakeAPI) GetAllTeacherStatus(context.Context) ([]teacher.Application, error) {
	if err := f.record("GetAllTeacherStatus"); err != nil {
		return nil, err
	}
	return f.teachers, nil
}

func (f *fakeAPI) ApproveTeacher(context.Context, string) error { return f.record("ApproveTeacher") }

func (f *fakeAPI) RejectTeacher(context.Context, string) error { return f.record("RejectTeacher") }

func (f *fakeAPI) DeleteUser(context.Context) error { return f.record("DeleteUser") }

type recordingNotifier struct {
	mu    sync.Mutex
	notes []core.Notification
}

func (n *recordingNotifier) Notify(note core.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) last() core.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return core.Notification{}
	}
	return n.notes[len(n.notes)-1]
}
