// Package notify delivers core.Notifications to the user.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/trezcool/classroom/core"
)

// Console prints notifications to a terminal, destructive ones in red.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

var _ core.Notifier = (*Console)(nil)

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(n core.Notification) {
	paint := color.New(color.FgGreen, color.Bold).SprintFunc()
	if n.Variant == core.VariantDestructive {
		paint = color.New(color.FgRed, color.Bold).SprintFunc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, "%s %s\n", paint(n.Title+":"), n.Description)
}

// Recorder keeps notifications until they are drained.
type Recorder struct {
	mu    sync.Mutex
	items []core.Notification
}

var _ core.Notifier = (*Recorder)(nil)

func (r *Recorder) Notify(n core.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain() []core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	if items == nil {
		items = []core.Notification{}
	}
	return items
}

// Multi forwards every notification to each of its notifiers.
type Multi []core.Notifier

func (m Multi) Notify(n core.Notification) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}
