package common

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogOption configures the logger handed to a component. The zero value discards all output.
type LogOption struct {
	LogLevel logrus.Level
	Logger   *logrus.Logger
}

// NewLogger returns opt.Logger if set, otherwise a new logger at opt.LogLevel. Without any option,
// or with a zero option, the returned logger discards its output.
func NewLogger(opt ...LogOption) *logrus.Logger {
	logger := logrus.New()
	if len(opt) == 0 || (opt[0].Logger == nil && opt[0].LogLevel == logrus.PanicLevel) {
		logger.Out = io.Discard
		return logger
	}
	if opt[0].Logger != nil {
		return opt[0].Logger
	}
	logger.SetLevel(opt[0].LogLevel)
	return logger
}

// StandardLogOption routes component logs to the process-wide logrus logger.
func StandardLogOption() LogOption {
	return LogOption{Logger: logrus.StandardLogger()}
}
