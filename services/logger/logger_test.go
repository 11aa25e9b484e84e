package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/user"
)

func init() {
	color.NoColor = true
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, false)

	l.Debug("hidden")
	assert.Empty(t, buf.String(), "debug is disabled")

	usr := user.User{ID: "u1", Email: "ada@example.com"}
	l.Error("fetching user", errors.New("boom"), map[string]interface{}{"b": 2, "a": 1}, usr)
	line := buf.String()
	assert.Contains(t, line, "ERROR: fetching user")
	assert.Contains(t, line, "err=boom a=1 b=2")
	assert.Contains(t, line, "user=")
	assert.Contains(t, line, "ada@example.com")

	buf.Reset()
	var code int
	l.exit = func(c int) { code = c }
	l.Fatal("bye")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), "ERROR: bye"))
}

func TestConsoleLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(&buf, true).Debug("shown", "extra")
	assert.Contains(t, buf.String(), "DEBUG: shown arg0=extra")
}

func TestColorHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, false)
	l.sl = l.sl.With("app", "classroom")
	l.Info("started")
	assert.Contains(t, buf.String(), "INFO: started app=classroom")
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &core.Config{Env: "TEST"})
	l.Enable(false)

	err := errors.New("boom")
	usr := user.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	got := l.prepare("msg", []interface{}{err, usr, &usr})
	assert.Equal(t, []interface{}{"msg", err}, got)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &ConsoleLogger{}, New(&core.Config{Debug: true, RollbarToken: "tkn"}))
	assert.IsType(t, &ConsoleLogger{}, New(&core.Config{}))
	assert.IsType(t, &RollbarLogger{}, New(&core.Config{RollbarToken: "tkn", TestMode: true}))
}
