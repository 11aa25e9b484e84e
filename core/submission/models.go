package submission

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Student) UnmarshalJSON(data []byte) error {
	type alias Student
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Student(raw.alias)
	if s.ID == "" {
		s.ID = raw.MongoID
	}
	return nil
}

type Submission struct {
	ID             string         `json:"id"`
	AssignmentID   string         `json:"assignmentId"`
	StudentID      string         `json:"studentId"`
	Student        *Student       `json:"student,omitempty"`
	SubmissionDate core.Timestamp `json:"submissionDate"`
	GitHubLink     string         `json:"githubLink"`
	Score          *float64       `json:"score"`
	Feedback       string         `json:"feedback,omitempty"`
	Rank           int            `json:"rank,omitempty"`
}

// UnmarshalJSON accepts both the flat shape (`assignmentId`, `studentId`) and the
// populated shape (`assignment`, `student{...}`) returned by the backend.
func (s *Submission) UnmarshalJSON(data []byte) error {
	type alias Submission
	var raw struct {
		alias
		MongoID    string          `json:"_id"`
		Assignment json.RawMessage `json:"assignment"`
		Student    json.RawMessage `json:"student"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Submission(raw.alias)
	if s.ID == "" {
		s.ID = raw.MongoID
	}

	if s.AssignmentID == "" && len(raw.Assignment) > 0 {
		id, err := refID(raw.Assignment)
		if err != nil {
			return errors.Wrap(err, "assignment")
		}
		s.AssignmentID = id
	}

	stdt := bytes.TrimSpace(raw.Student)
	switch {
	case len(stdt) == 0 || bytes.Equal(stdt, []byte("null")):
	case stdt[0] == '"':
		if s.StudentID == "" {
			if err := json.Unmarshal(stdt, &s.StudentID); err != nil {
				return errors.Wrap(err, "student")
			}
		}
	default:
		s.Student = new(Student)
		if err := json.Unmarshal(stdt, s.Student); err != nil {
			return errors.Wrap(err, "student")
		}
		if s.StudentID == "" {
			s.StudentID = s.Student.ID
		}
	}
	return nil
}

// refID reads a reference that is either an id string or an object carrying `id`/`_id`.
func refID(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var id string
		err := json.Unmarshal(data, &id)
		return id, err
	}
	var obj struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", err
	}
	if obj.ID != "" {
		return obj.ID, nil
	}
	return obj.MongoID, nil
}

func (s Submission) Graded() bool {
	return s.Score != nil
}

// StudentName returns the populated student's name, if any.
func (s Submission) StudentName() string {
	if s.Student == nil {
		return ""
	}
	return s.Student.Name
}

func (s Submission) StudentEmail() string {
	if s.Student == nil {
		return ""
	}
	return s.Student.Email
}

// Draft contains information needed to create and grade a Submission.
type Draft struct {
	AssignmentID string `json:"assignmentId" validate:"required"`
	StudentID    string `json:"studentId" validate:"required"`
	GitHubLink   string `json:"githubLink" validate:"required,githubrepo"`
}

func (d *Draft) Validate(validate *validator.Validate) error {
	d.GitHubLink = core.CleanString(d.GitHubLink)
	return validate.Struct(d)
}
