package assignment

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
)

// Status of an assignment from a student's point of view.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusMissed    Status = "Missed"
)

var AllStatuses = []Status{StatusPending, StatusCompleted, StatusMissed}

type Assignment struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     core.Timestamp `json:"dueDate"`
	TotalScore  float64        `json:"totalScore"`
}

// UnmarshalJSON also accepts the backend's `_id`.
func (a *Assignment) UnmarshalJSON(data []byte) error {
	type alias Assignment
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Assignment(raw.alias)
	if a.ID == "" {
		a.ID = raw.MongoID
	}
	return nil
}

// PastDue reports whether the assignment was due before `now`.
func (a Assignment) PastDue(now time.Time) bool {
	return !a.DueDate.IsZero() && a.DueDate.Before(now)
}

// StudentAssignment is an assignment as listed for the logged in student.
type StudentAssignment struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	DueDate     core.Timestamp `json:"dueDate"`
	YourScore   *float64       `json:"yourScore"`
	TotalScore  float64        `json:"totalScore"`
}

func (a *StudentAssignment) UnmarshalJSON(data []byte) error {
	type alias StudentAssignment
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = StudentAssignment(raw.alias)
	if a.ID == "" {
		a.ID = raw.MongoID
	}
	return nil
}

func (a StudentAssignment) Graded() bool {
	return a.YourScore != nil
}

// Draft contains information needed to create or edit an Assignment.
type Draft struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	DueDate     *time.Time `json:"dueDate" validate:"required"`
	TotalScore  float64    `json:"totalScore" validate:"required"`
}

func (d *Draft) Validate(validate *validator.Validate) error {
	d.Title = core.CleanString(d.Title)
	d.Description = core.CleanString(d.Description)
	return validate.Struct(d)
}

// Assignment returns the assignment described by the draft, identified by `id`.
func (d Draft) Assignment(id string) Assignment {
	a := Assignment{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		TotalScore:  d.TotalScore,
	}
	if d.DueDate != nil {
		a.DueDate = core.NewTimestamp(*d.DueDate)
	}
	return a
}

// Draft returns the editable fields of `a`.
func (a Assignment) Draft() Draft {
	d := Draft{Title: a.Title, Description: a.Description, TotalScore: a.TotalScore}
	if !a.DueDate.IsZero() {
		due := a.DueDate.Time
		d.DueDate = &due
	}
	return d
}
