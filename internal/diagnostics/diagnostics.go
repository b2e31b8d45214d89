// Package diagnostics bootstraps opt-in error telemetry. When disabled
// (the default) nothing is initialized and no data leaves the node.
package diagnostics

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
)

const flushTimeout = 2 * time.Second

// sentryReporter forwards enhanced errors to Sentry.
type sentryReporter struct{}

func (sentryReporter) ReportError(ee *errors.EnhancedError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		if ee.Priority != "" {
			scope.SetTag("priority", ee.Priority)
		}
		if len(ee.Context) > 0 {
			scope.SetContext("error_context", ee.Context)
		}
		sentry.CaptureException(ee.Err)
	})
}

// Init enables Sentry error telemetry when configured. Returns a shutdown
// function that flushes buffered events; the function is a no-op when
// telemetry is disabled.
func Init(settings *conf.SentrySettings, release string) (func(), error) {
	if !settings.Enabled {
		return func() {}, nil
	}

	log := logging.ForService("diagnostics")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, errors.New(err).
			Component("diagnostics").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetReporter(sentryReporter{})
	if log != nil {
		log.Info("error telemetry enabled")
	}

	return func() {
		errors.SetReporter(nil)
		sentry.Flush(flushTimeout)
	}, nil
}
