package teacher

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() []Application {
	return []Application{
		{ID: "t1", Name: "Alice Johnson", Email: "alice@example.com", Status: StatusPending},
		{ID: "t2", Name: "Bob Smith", Email: "bob@school.org", Status: StatusApproved},
		{ID: "t3", Name: "Carol White", Email: "carol@example.com", Status: StatusPending},
		{ID: "t4", Name: "Dan Brown", Email: "dan@example.com", Status: StatusRejected},
	}
}

func TestFilter(t *testing.T) {
	apps := fixtures()
	ids := func(list []Application) []string {
		res := []string{}
		for _, a := range list {
			res = append(res, a.ID)
		}
		return res
	}

	assert.Equal(t, []string{"t1", "t3"}, ids(Filter(apps, StatusPending, "")))
	assert.Equal(t, []string{"t3"}, ids(Filter(apps, StatusPending, "CAROL")))
	assert.Equal(t, []string{"t1", "t3"}, ids(Filter(apps, StatusPending, "example")))
	assert.Equal(t, []string{}, ids(Filter(apps, StatusApproved, "example")))
}

func TestCountByStatus(t *testing.T) {
	assert.Equal(t, map[Status]int{StatusPending: 2, StatusApproved: 1, StatusRejected: 1}, CountByStatus(fixtures()))
	assert.Equal(t, map[Status]int{StatusPending: 0, StatusApproved: 0, StatusRejected: 0}, CountByStatus(nil))
}

func TestSetStatus(t *testing.T) {
	apps := fixtures()

	got, ok := SetStatus(apps, "t1", StatusApproved)
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, got[0].Status)
	assert.Equal(t, StatusPending, apps[0].Status)

	_, ok = SetStatus(apps, "nope", StatusApproved)
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseStatus("banned")
	assert.Equal(t, ErrUnknownStatus, errors.Cause(err))
}

func TestApplication_UnmarshalJSON(t *testing.T) {
	var app Application
	require.NoError(t, json.Unmarshal([]byte(`{"_id": "t9", "name": "Eve", "status": "Pending", "dateApplied": "2024-08-01T10:00:00Z"}`), &app))
	assert.Equal(t, "t9", app.ID)
	assert.Equal(t, StatusPending, app.Status)
	assert.Equal(t, 2024, app.DateApplied.Year())
}
