package notify

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/classroom/core"
)

func TestConsole(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Notify(core.Success("User fetched"))
	c.Notify(core.Failure(errors.New("Network Error")))

	assert.Equal(t, "Success: User fetched\nError: Network Error\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	assert.Equal(t, []core.Notification{}, rec.Drain())

	var other Recorder
	Multi{&rec, &other}.Notify(core.Success("a"))
	rec.Notify(core.FailureMsg("b"))

	got := rec.Drain()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "a", got[0].Description)
		assert.Equal(t, core.VariantDestructive, got[1].Variant)
	}
	assert.Empty(t, rec.Drain())
	assert.Len(t, other.Drain(), 1)
}
