package teacher

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

// Status of a teacher's sign-up application.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

var (
	AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

	ErrUnknownStatus = errors.New("unknown teacher status")
)

func ParseStatus(s string) (Status, error) {
	s = core.CleanString(s)
	for _, st := range AllStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
}

// Application is a teacher account awaiting (or past) an admin decision.
type Application struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Status      Status         `json:"status"`
	DateApplied core.Timestamp `json:"dateApplied"`
}

func (a *Application) UnmarshalJSON(data []byte) error {
	type alias Application
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Application(raw.alias)
	if a.ID == "" {
		a.ID = raw.MongoID
	}
	return nil
}

// Filter keeps the applications with `status` whose name or email contains `term`, ignoring case.
func Filter(apps []Application, status Status, term string) []Application {
	res := make([]Application, 0, len(apps))
	for _, app := range apps {
		if app.Status != status {
			continue
		}
		if term == "" || core.ContainsFold(app.Name, term) || core.ContainsFold(app.Email, term) {
			res = append(res, app)
		}
	}
	return res
}

func CountByStatus(apps []Application) map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, st := range AllStatuses {
		counts[st] = 0
	}
	for _, app := range apps {
		counts[app.Status]++
	}
	return counts
}

// SetStatus returns a copy of `apps` where the application `id` has `status`.
func SetStatus(apps []Application, id string, status Status) ([]Application, bool) {
	res := make([]Application, len(apps))
	var found bool
	for i, app := range apps {
		if app.ID == id {
			app.Status = status
			found = true
		}
		res[i] = app
	}
	return res, found
}
