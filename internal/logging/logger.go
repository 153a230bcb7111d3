package logging

import "go.uber.org/zap"

// New returns the process logger. Logging is off unless enabled; the
// development config adds caller info and human-readable output.
func New(enabled, development bool) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
