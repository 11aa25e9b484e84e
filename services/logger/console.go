package logsvc

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/trezcool/classroom/core"
)

// ColorHandler is a slog.Handler printing one coloured line per record.
type ColorHandler struct {
	l     *log.Logger
	level slog.Level
	attrs []slog.Attr
}

func NewColorHandler(out io.Writer, level slog.Level) *ColorHandler {
	return &ColorHandler{
		l:     log.New(out, "", 0),
		level: level,
	}
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var attrs strings.Builder
	write := func(a slog.Attr) bool {
		attrs.WriteString(color.GreenString(a.Key) + "=" + fmt.Sprint(a.Value.Any()) + " ")
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)

	h.l.Println(
		r.Time.Format("15:04:05.000"),
		level,
		r.Message,
		strings.TrimSpace(attrs.String()),
	)
	return nil
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

func (h *ColorHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// ConsoleLogger is a core.Logger printing to a terminal.
type ConsoleLogger struct {
	sl   *slog.Logger
	exit func(code int)
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(out io.Writer, debug bool) *ConsoleLogger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return &ConsoleLogger{sl: slog.New(NewColorHandler(out, level)), exit: os.Exit}
}

// attrs converts the core.Logger args into key/value pairs.
func attrs(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, len(args)*2)
	for i, arg := range args {
		if usr, ok := asUser(arg); ok {
			kvs = append(kvs, slog.Group("user", "id", usr.ID, "email", usr.Email))
			continue
		}
		switch a := arg.(type) {
		case error:
			kvs = append(kvs, "err", a.Error())
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				kvs = append(kvs, k, a[k])
			}
		default:
			kvs = append(kvs, fmt.Sprintf("arg%d", i), a)
		}
	}
	return kvs
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.sl.Debug(msg, attrs(args)...) }

func (l *ConsoleLogger) Info(msg string, args ...interface{}) { l.sl.Info(msg, attrs(args)...) }

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) { l.sl.Warn(msg, attrs(args)...) }

func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.sl.Error(msg, attrs(args)...) }

func (l *ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.sl.Error(msg, attrs(args)...)
	l.exit(1)
}
