package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/ghuser/emssupply/pkg/logger"
)

// watermillLogger routes Watermill's logs into logger.Logger. Watermill's
// info level is chatty (one line per poll), so it is demoted to debug.
type watermillLogger struct{ log logger.Logger }

var _ watermill.LoggerAdapter = (*watermillLogger)(nil)

func newWatermillLogger(log logger.Logger) *watermillLogger {
	return &watermillLogger{log: log.With("component", "watermill")}
}

func (a *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldArgs(fields), "error", err)...)
}

func (a *watermillLogger) Info(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: a.log.With(fieldArgs(fields)...)}
}

func fieldArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
