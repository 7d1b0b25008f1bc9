package auth

// Logger is the minimal logging surface the auth packages need. It matches
// the log/slog method set, so a *slog.Logger satisfies it directly.
type Logger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// NullLogger discards everything. It is the default when no logger is wired.
type NullLogger struct{}

func (NullLogger) Error(msg string, args ...any) {}
func (NullLogger) Info(msg string, args ...any)  {}
func (NullLogger) Debug(msg string, args ...any) {}
