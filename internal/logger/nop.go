package logger

// nopLogger discards everything. Used in tests and as a safe default.
type nopLogger struct{}

// NewNop creates a logger that does nothing.
func NewNop() Interface {
	return &nopLogger{}
}

func (l *nopLogger) Debug(msg string, fields ...Field) {}
func (l *nopLogger) Info(msg string, fields ...Field)  {}
func (l *nopLogger) Warn(msg string, fields ...Field)  {}
func (l *nopLogger) Error(msg string, fields ...Field) {}
func (l *nopLogger) Fatal(msg string, fields ...Field) {}

func (l *nopLogger) With(fields ...Field) Interface { return l }

func (l *nopLogger) Sync() error { return nil }
