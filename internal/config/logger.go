package config

// Logger receives debug output from Load. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
