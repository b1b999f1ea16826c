package state

import (
	"log/slog"
	"testing"

	"github.com/encodeous/tint"
)

// This can be used as the destination for a logger and it'll
// map them into calls to testing.T.Log, so that you only see
// the logging for failed tests.
type testLoggerAdapter struct {
	t testing.TB
}

func (a *testLoggerAdapter) Write(d []byte) (int, error) {
	if len(d) > 0 && d[len(d)-1] == '\n' {
		a.t.Log(string(d[:len(d)-1]))
	} else {
		a.t.Log(string(d))
	}
	return len(d), nil
}

func NewTestLogger(t testing.TB) *slog.Logger {
	return slog.New(tint.NewHandler(&testLoggerAdapter{t: t}, &tint.Options{
		Level:   slog.LevelDebug,
		NoColor: true,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == "time" {
				return slog.Attr{}
			}
			return attr
		},
	}))
}
