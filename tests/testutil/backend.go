// Package testutil provides an in-process classroom backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/leaderboard"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/teacher"
	"github.com/trezcool/classroom/core/user"
)

// Request is one call received by the FakeBackend.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string // Authorization header
	Body   string
}

type failure struct {
	status int
	body   interface{}
}

type Account struct {
	User     user.User
	Password string
}

// FakeBackend serves the classroom REST API from memory.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	failures map[string]failure
	tokens   map[string]string // token -> user id
	accounts map[string]*Account

	Assignments        []assignment.Assignment
	StudentAssignments []assignment.StudentAssignment
	Students           []submission.Student
	Submissions        []submission.Submission
	Teachers           []teacher.Application
	DailyBoard         map[string][]submission.Submission // by YYYY-MM-DD
	AllTime            []leaderboard.AllTimeEntry
	// PageSize > 0 splits teacher assignment lists into Link-paginated pages.
	PageSize int
	// Grade returns the score given to a new submission.
	Grade func(d submission.Draft) float64
}

func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		failures:   make(map[string]failure),
		tokens:     make(map[string]string),
		accounts:   make(map[string]*Account),
		DailyBoard: make(map[string][]submission.Submission),
		Grade:      func(submission.Draft) float64 { return 0 },
	}
	fb.Server = httptest.NewServer(fb.routes())
	t.Cleanup(fb.Close)
	return fb
}

func (fb *FakeBackend) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(fb.record, fb.fail)

	v1 := e.Group("/api/v1")
	v1.POST("/auth/register", fb.register)
	v1.POST("/auth/login", fb.login)
	v1.GET("/leaderboard", fb.dailyLeaderboard)
	v1.GET("/leaderboard/all-time", fb.allTimeLeaderboard)

	auth := v1.Group("", fb.authenticate)
	auth.GET("/auth/me", fb.me)
	auth.DELETE("/auth/me", fb.deleteMe)
	auth.GET("/assignment", fb.listAssignments)
	auth.POST("/assignment", fb.createAssignment)
	auth.PUT("/assignment/:id", fb.editAssignment)
	auth.GET("/assignments", fb.assignmentsData)
	auth.GET("/student/assignments", fb.studentAssignments)
	auth.GET("/student", fb.listStudents)
	auth.GET("/submission", fb.listSubmissions)
	auth.POST("/submission/grade", fb.gradeSubmission)
	auth.GET("/admin/all-teacher-status", fb.teacherStatus)
	auth.PATCH("/admin/approve/:id", fb.setTeacherStatus(teacher.StatusApproved))
	auth.PATCH("/admin/reject/:id", fb.setTeacherStatus(teacher.StatusRejected))
	return e
}

// AddAccount registers `usr` and returns a valid token for it.
func (fb *FakeBackend) AddAccount(usr user.User, password string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.accounts[usr.Email] = &Account{User: usr, Password: password}
	return fb.issueToken(usr.ID)
}

// Fail makes every `method` call to `path` (e.g. /api/v1/auth/me) answer `status` with `body`.
func (fb *FakeBackend) Fail(method, path string, status int, body interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method+" "+path] = failure{status: status, body: body}
}

func (fb *FakeBackend) Requests() []Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Request(nil), fb.requests...)
}

// Count returns the number of `method` calls received on `path`.
func (fb *FakeBackend) Count(method, path string) int {
	var n int
	for _, r := range fb.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (fb *FakeBackend) LastRequest() Request {
	reqs := fb.Requests()
	if len(reqs) == 0 {
		return Request{}
	}
	return reqs[len(reqs)-1]
}

func (fb *FakeBackend) issueToken(id string) string {
	tkn := fmt.Sprintf("token-%s-%d", id, len(fb.tokens)+1)
	fb.tokens[tkn] = id
	return tkn
}

func (fb *FakeBackend) userByID(id string) (user.User, bool) {
	for _, acc := range fb.accounts {
		if acc.User.ID == id {
			return acc.User, true
		}
	}
	return user.User{}, false
}

// middleware

func (fb *FakeBackend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(strings.NewReader(string(body)))

		fb.mu.Lock()
		fb.requests = append(fb.requests, Request{
			Method: req.Method,
			Path:   req.URL.Path,
			Query:  req.URL.RawQuery,
			Auth:   req.Header.Get(echo.HeaderAuthorization),
			Body:   string(body),
		})
		fb.mu.Unlock()
		return next(ctx)
	}
}

func (fb *FakeBackend) fail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		fb.mu.Lock()
		f, ok := fb.failures[ctx.Request().Method+" "+ctx.Request().URL.Path]
		fb.mu.Unlock()
		if ok {
			return ctx.JSON(f.status, f.body)
		}
		return next(ctx)
	}
}

const userKey = "user"

func (fb *FakeBackend) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tkn := strings.TrimPrefix(ctx.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")

		fb.mu.Lock()
		id, ok := fb.tokens[tkn]
		var usr user.User
		if ok {
			usr, ok = fb.userByID(id)
		}
		fb.mu.Unlock()

		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, token failed"})
		}
		ctx.Set(userKey, usr)
		return next(ctx)
	}
}

// handlers

func (fb *FakeBackend) register(ctx echo.Context) error {
	var reg user.Registration
	if err := ctx.Bind(&reg); err != nil {
		return err
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.accounts[reg.Email]; exists {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "User already exists"})
	}
	usr := user.User{
		ID:    strconv.Itoa(len(fb.accounts) + 1),
		Name:  reg.Name,
		Email: reg.Email,
		Role:  user.RoleStudent,
	}
	fb.accounts[reg.Email] = &Account{User: usr, Password: reg.Password}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "token": fb.issueToken(usr.ID)})
}

func (fb *FakeBackend) login(ctx echo.Context) error {
	var creds user.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return err
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	acc, ok := fb.accounts[creds.Email]
	if !ok || acc.Password != creds.Password {
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": fb.issueToken(acc.User.ID)})
}

func (fb *FakeBackend) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"data": ctx.Get(userKey)})
}

func (fb *FakeBackend) deleteMe(ctx echo.Context) error {
	usr := ctx.Get(userKey).(user.User)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	delete(fb.accounts, usr.Email)
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "User deleted"})
}

func (fb *FakeBackend) listAssignments(ctx echo.Context) error {
	fb.mu.Lock()
	items := append([]assignment.Assignment{}, fb.Assignments...)
	size := fb.PageSize
	fb.mu.Unlock()

	if size <= 0 {
		return ctx.JSON(http.StatusOK, items)
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	start, end := (page-1)*size, page*size
	if start > len(items) {
		start = len(items)
	}
	if end >= len(items) {
		end = len(items)
	} else {
		next := fmt.Sprintf("%s%s?page=%d", fb.URL, ctx.Request().URL.Path, page+1)
		ctx.Response().Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}
	return ctx.JSON(http.StatusOK, items[start:end])
}

func (fb *FakeBackend) createAssignment(ctx echo.Context) error {
	var a assignment.Assignment
	if err := ctx.Bind(&a); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	a.ID = fmt.Sprintf("a%d", len(fb.Assignments)+1)
	fb.Assignments = append(fb.Assignments, a)
	return ctx.JSON(http.StatusCreated, a)
}

func (fb *FakeBackend) editAssignment(ctx echo.Context) error {
	var a assignment.Assignment
	if err := ctx.Bind(&a); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	a.ID = ctx.Param("id")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	var ok bool
	fb.Assignments, ok = assignment.Replace(fb.Assignments, a)
	if !ok {
		return ctx.JSON(http.StatusNotFound, echo.Map{"message": "Assignment not found"})
	}
	return ctx.JSON(http.StatusOK, a)
}

func (fb *FakeBackend) assignmentsData(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{"data": fb.Assignments})
}

func (fb *FakeBackend) studentAssignments(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{"data": fb.StudentAssignments})
}

func (fb *FakeBackend) listStudents(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": fb.Students})
}

func (fb *FakeBackend) listSubmissions(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "data": fb.Submissions})
}

func (fb *FakeBackend) gradeSubmission(ctx echo.Context) error {
	var d submission.Draft
	if err := ctx.Bind(&d); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	score := fb.Grade(d)
	sub := submission.Submission{
		ID:           fmt.Sprintf("s%d", len(fb.Submissions)+1),
		AssignmentID: d.AssignmentID,
		StudentID:    d.StudentID,
		GitHubLink:   d.GitHubLink,
		Score:        &score,
	}
	fb.Submissions = append(fb.Submissions, sub)
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "data": sub})
}

func (fb *FakeBackend) teacherStatus(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return ctx.JSON(http.StatusOK, fb.Teachers)
}

func (fb *FakeBackend) setTeacherStatus(status teacher.Status) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		var ok bool
		fb.Teachers, ok = teacher.SetStatus(fb.Teachers, ctx.Param("id"), status)
		if !ok {
			return ctx.JSON(http.StatusNotFound, echo.Map{"message": "Teacher not found"})
		}
		return ctx.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func (fb *FakeBackend) dailyLeaderboard(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	subs := fb.DailyBoard[ctx.QueryParam("date")]
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"data": subs})
}

func (fb *FakeBackend) allTimeLeaderboard(ctx echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{"data": fb.AllTime})
}

// JSON marshals `v` or fails the test.
func JSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("JSON(): %v", err)
	}
	return string(data)
}
