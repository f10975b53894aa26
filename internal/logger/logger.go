package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options configures the process logger.
type Options struct {
	Development bool
	SentryDSN   string
	Environment string
	// Output defaults to stdout.
	Output io.Writer
}

// New builds a logger: text at debug level in development, JSON at info
// level otherwise. With a Sentry DSN, error records are also reported to
// Sentry. The returned flush func drains pending Sentry events.
func New(opts Options) (*slog.Logger, func()) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var handlers []slog.Handler
	if opts.Development {
		handlers = append(handlers, slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	flush := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Environment,
		})
		if err != nil {
			slog.New(handlers[0]).Warn("sentry disabled", "error", err)
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
			flush = func() { sentry.Flush(2 * time.Second) }
		}
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}

	return slog.New(handler), flush
}

// Init installs the logger from New as the slog default.
func Init(opts Options) func() {
	log, flush := New(opts)
	slog.SetDefault(log)
	return flush
}
