package backend

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/leaderboard"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/teacher"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/tests/testutil"
)

var (
	ctx = context.Background()

	teacherUsr = user.User{ID: "t1", Name: "Ada Lovelace", Email: "ada@example.com", Role: user.RoleTeacher}
	studentUsr = user.User{ID: "s1", Name: "Alan Turing", Email: "alan@example.com", Role: user.RoleStudent}
	adminUsr   = user.User{ID: "ad1", Name: "Grace Hopper", Email: "grace@example.com", Role: user.RoleAdmin}
)

type observation struct {
	method, route string
	status        int
}

func setup(t *testing.T) (*testutil.FakeBackend, *Client, *[]observation) {
	fb := testutil.NewFakeBackend(t)
	var seen []observation
	c := New(Options{
		BaseURL: fb.URL,
		Timeout: 5 * time.Second,
		Observer: func(method, route string, status int, _ time.Duration) {
			seen = append(seen, observation{method, route, status})
		},
	})
	return fb, c, &seen
}

func TestClient_Auth(t *testing.T) {
	fb, c, seen := setup(t)
	fb.AddAccount(studentUsr, "s3cret-pass")

	t.Run("login", func(t *testing.T) {
		tkn, err := c.LoginUser(ctx, user.Credentials{Email: studentUsr.Email, Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, tkn)

		usr, err := c.WithToken(tkn).GetCurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, studentUsr.ID, usr.ID)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Equal(t, "Bearer "+tkn, fb.LastRequest().Auth)
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := c.LoginUser(ctx, user.Credentials{Email: studentUsr.Email, Password: "nope"})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "Invalid email or password", apiErr.Message)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("register", func(t *testing.T) {
		tkn, err := c.RegisterUser(ctx, user.Registration{Name: "Kat", Email: "kat@example.com", Password: "pa55word!"})
		require.NoError(t, err)
		assert.NotEmpty(t, tkn)

		_, err = c.RegisterUser(ctx, user.Registration{Name: "Kat", Email: "kat@example.com", Password: "pa55word!"})
		assert.EqualError(t, err, "User already exists")
	})

	t.Run("no token", func(t *testing.T) {
		before := len(fb.Requests())
		_, err := c.GetCurrentUser(ctx)
		assert.Equal(t, ErrNoToken, err)
		_, err = c.WithToken("").GetAllAssignments(ctx)
		assert.Equal(t, ErrNoToken, err)
		assert.Len(t, fb.Requests(), before, "no request is sent without a token")
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := c.WithToken("forged").GetCurrentUser(ctx)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("delete account", func(t *testing.T) {
		tkn := fb.AddAccount(user.User{ID: "gone", Email: "gone@example.com", Role: user.RoleTeacherRejected}, "x")
		require.NoError(t, c.WithToken(tkn).DeleteUser(ctx))
		assert.Equal(t, 1, fb.Count(http.MethodDelete, "/api/v1/auth/me"))

		_, err := c.WithToken(tkn).GetCurrentUser(ctx)
		assert.True(t, IsUnauthorized(err))
	})

	assert.Contains(t, *seen, observation{http.MethodPost, routeLogin, http.StatusOK})
	assert.Contains(t, *seen, observation{http.MethodGet, routeMe, http.StatusUnauthorized})
}

func TestClient_Assignments(t *testing.T) {
	fb, c, seen := setup(t)
	c = c.WithToken(fb.AddAccount(teacherUsr, "pwd"))

	due := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	created, err := c.CreateAssignment(ctx, assignment.Draft{
		Title:       "Linked lists",
		Description: "Implement one",
		DueDate:     &due,
		TotalScore:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", created.ID)
	assert.True(t, due.Equal(created.DueDate.Time))
	assert.Contains(t, fb.LastRequest().Body, `"dueDate":"2024-09-01T12:00:00.000Z"`)

	created.Title = "Doubly linked lists"
	require.NoError(t, c.EditAssignment(ctx, created))
	assert.Equal(t, 1, fb.Count(http.MethodPut, "/api/v1/assignment/a1"))

	all, err := c.GetAllAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Doubly linked lists", all[0].Title)

	err = c.EditAssignment(ctx, assignment.Assignment{ID: "nope", Title: "x"})
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	data, err := c.GetAssignmentsData(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Doubly linked lists")

	assert.Contains(t, *seen, observation{http.MethodPut, routeAssignmentByID, http.StatusOK})
}

func TestClient_Pagination(t *testing.T) {
	fb, c, _ := setup(t)
	c = c.WithToken(fb.AddAccount(teacherUsr, "pwd"))

	for i := 0; i < 5; i++ {
		fb.Assignments = append(fb.Assignments, assignment.Assignment{ID: string(rune('a' + i)), Title: "hw"})
	}
	fb.PageSize = 2

	all, err := c.GetAllAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "e", all[4].ID)
	assert.Equal(t, 3, fb.Count(http.MethodGet, "/api/v1/assignment"))
}

func TestClient_Students(t *testing.T) {
	fb, c, _ := setup(t)
	c = c.WithToken(fb.AddAccount(studentUsr, "pwd"))

	score := 8.0
	fb.StudentAssignments = []assignment.StudentAssignment{
		{ID: "a1", Title: "hw1", Status: assignment.StatusCompleted, YourScore: &score, TotalScore: 10},
		{ID: "a2", Title: "hw2", Status: assignment.StatusPending, TotalScore: 10},
	}
	fb.Students = []submission.Student{{ID: "s1", Name: "Alan Turing", Email: "alan@example.com"}}
	fb.Grade = func(submission.Draft) float64 { return 9 }

	mine, err := c.GetAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].Graded())
	assert.False(t, mine[1].Graded())

	stdts, err := c.GetAllStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, fb.Students, stdts)

	sub, err := c.CreateAndGradeSubmission(ctx, submission.Draft{
		AssignmentID: "a2",
		StudentID:    "s1",
		GitHubLink:   "https://github.com/alan/hw2",
	})
	require.NoError(t, err)
	require.NotNil(t, sub.Score)
	assert.Equal(t, 9.0, *sub.Score)
	assert.Equal(t, "a2", sub.AssignmentID)

	subs, err := c.GetAllSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestClient_EnvelopeFailures(t *testing.T) {
	fb, c, _ := setup(t)
	c = c.WithToken(fb.AddAccount(teacherUsr, "pwd"))

	fb.Fail(http.MethodGet, "/api/v1/student", http.StatusOK, map[string]interface{}{"success": false})
	_, err := c.GetAllStudents(ctx)
	assert.EqualError(t, err, "unable to fetch all students")

	fb.Fail(http.MethodGet, "/api/v1/submission", http.StatusOK, map[string]interface{}{"success": false, "message": "db down"})
	_, err = c.GetAllSubmissions(ctx)
	assert.EqualError(t, err, "db down")

	fb.Fail(http.MethodGet, "/api/v1/assignment", http.StatusInternalServerError, nil)
	_, err = c.GetAllAssignments(ctx)
	assert.EqualError(t, err, "request failed with status code 500")
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestClient_Admin(t *testing.T) {
	fb, c, _ := setup(t)
	c = c.WithToken(fb.AddAccount(adminUsr, "pwd"))
	fb.Teachers = []teacher.Application{
		{ID: "t1", Name: "Ada", Email: "ada@example.com", Status: teacher.StatusPending},
		{ID: "t2", Name: "Bob", Email: "bob@example.com", Status: teacher.StatusPending},
	}

	require.NoError(t, c.ApproveTeacher(ctx, "t1"))
	require.NoError(t, c.RejectTeacher(ctx, "t2"))
	assert.Equal(t, "{}", fb.LastRequest().Body)
	assert.Equal(t, http.StatusNotFound, StatusCode(c.ApproveTeacher(ctx, "t3")))

	apps, err := c.GetAllTeacherStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[teacher.Status]int{
		teacher.StatusPending:  0,
		teacher.StatusApproved: 1,
		teacher.StatusRejected: 1,
	}, teacher.CountByStatus(apps))
}

func TestClient_Leaderboard(t *testing.T) {
	fb, c, _ := setup(t)

	day := time.Date(2024, 8, 20, 15, 0, 0, 0, time.Local)
	score := 17.0
	fb.DailyBoard["2024-08-20"] = []submission.Submission{{
		ID:      "s1",
		Student: &submission.Student{ID: "u1", Name: "Alan", Email: "alan@example.com"},
		Score:   &score,
		Rank:    1,
	}}
	fb.AllTime = []leaderboard.AllTimeEntry{{ID: "u1", Name: "Alan", Email: "alan@example.com", TotalScore: 42, Rank: 1}}

	subs, err := c.GetDateSpecificLeaderboard(ctx, day)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "date=2024-08-20", fb.LastRequest().Query)
	assert.Empty(t, fb.LastRequest().Auth, "leaderboards are public")
	assert.Equal(t, []leaderboard.Row{{ID: "s1", Rank: 1, Name: "Alan", Email: "alan@example.com", Score: 17}}, leaderboard.FromSubmissions(subs))

	subs, err = c.GetDateSpecificLeaderboard(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, subs)

	entries, err := c.GetAllTimeLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, fb.AllTime, entries)
}

func TestClient_TransportError(t *testing.T) {
	var status = -1
	c := New(Options{
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
		Observer: func(_, _ string, s int, _ time.Duration) {
			status = s
		},
	})
	_, err := c.LoginUser(ctx, user.Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.Zero(t, StatusCode(err))
	assert.Equal(t, 0, status)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr string
	}{
		{name: "raw array", body: `["a","b"]`, want: []string{"a", "b"}},
		{name: "data envelope", body: `{"success":true,"data":["a"]}`, want: []string{"a"}},
		{name: "null data", body: `{"data":null}`},
		{name: "empty body", body: ``},
		{name: "failed envelope", body: `{"success":false}`, wantErr: "fallback"},
		{name: "failed envelope with message", body: `{"success":false,"error":"boom"}`, wantErr: "boom"},
		{name: "garbage", body: `[1,`, wantErr: "decoding response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			err := decode([]byte(tt.body), &got, "fallback")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var v []string
	assert.EqualError(t, decode([]byte(`{"success":false}`), &v, ""), somethingWentWrong)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", errorMessage(400, []byte(`{"message":"nope"}`)))
	assert.Equal(t, "bad", errorMessage(400, []byte(`{"error":"bad"}`)))
	assert.Equal(t, "request failed with status code 502", errorMessage(502, []byte(`<html>`)))
	assert.Equal(t, "request failed with status code 404", errorMessage(404, nil))
}

func TestTimestampISO(t *testing.T) {
	// dueDate is sent in UTC with millisecond precision
	ts := core.NewTimestamp(time.Date(2024, 9, 1, 14, 0, 0, 0, time.FixedZone("EAT", 3*3600)))
	assert.Equal(t, "2024-09-01T11:00:00.000Z", ts.ISO())
}
