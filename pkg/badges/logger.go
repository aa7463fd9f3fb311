package badges

// Field is one key/value pair attached to a log line, such as user_id or guild_id.
type Field struct {
	Key   string
	Value interface{}
}

// Logger receives the lookup service's diagnostics: skipped guilds,
// unparseable premium_since values and failed notifications. Adapters
// live under logger/.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// NoopLogger drops everything. It is the Service default.
type NoopLogger struct{}

func (*NoopLogger) Debug(string, ...Field) {}
func (*NoopLogger) Info(string, ...Field)  {}
func (*NoopLogger) Warn(string, ...Field)  {}
func (*NoopLogger) Error(string, ...Field) {}
