package src

// Logger is the logging surface used across the service.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debug(args ...any)
	Debugf(template string, args ...any)
	Info(args ...any)
	Infof(template string, args ...any)
	Warn(args ...any)
	Warnf(template string, args ...any)
	Error(args ...any)
	Errorf(template string, args ...any)
	Sync() error
}

// NoopLogger discards everything. Handy in tests.
type NoopLogger struct{}

func (NoopLogger) Debug(args ...any)                   {}
func (NoopLogger) Debugf(template string, args ...any) {}
func (NoopLogger) Info(args ...any)                    {}
func (NoopLogger) Infof(template string, args ...any)  {}
func (NoopLogger) Warn(args ...any)                    {}
func (NoopLogger) Warnf(template string, args ...any)  {}
func (NoopLogger) Error(args ...any)                   {}
func (NoopLogger) Errorf(template string, args ...any) {}
func (NoopLogger) Sync() error                         { return nil }
