package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySolution      = "solution"
	KeyProject       = "project"
	KeyProjectID     = "project_id"
	KeyPath          = "path"
	KeyTarget        = "target"
	KeyConfiguration = "configuration"
	KeyPlatform      = "platform"
	KeySessionID     = "session_id"
	KeyStream        = "stream"
	KeyEventType     = "event_type"
	KeyState         = "state"
	KeyExitCode      = "exit_code"
	KeyDurationMS    = "duration_ms"
	KeyScheduleID    = "schedule_id"
	KeySchedule      = "schedule_name"
	KeySubject       = "subject"
	KeyCount         = "count"
	KeyMethod        = "method"
	KeyStatus        = "status"
	KeyRemoteAddr    = "remote_addr"
	KeyUserAgent     = "user_agent"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Solution(path string) slog.Attr    { return slog.String(KeySolution, path) }
func Project(name string) slog.Attr     { return slog.String(KeyProject, name) }
func ProjectID(id string) slog.Attr     { return slog.String(KeyProjectID, id) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Target(t string) slog.Attr         { return slog.String(KeyTarget, t) }
func Configuration(c string) slog.Attr  { return slog.String(KeyConfiguration, c) }
func Platform(p string) slog.Attr       { return slog.String(KeyPlatform, p) }
func SessionID(id string) slog.Attr     { return slog.String(KeySessionID, id) }
func Stream(s string) slog.Attr         { return slog.String(KeyStream, s) }
func EventType(t string) slog.Attr      { return slog.String(KeyEventType, t) }
func State(s string) slog.Attr          { return slog.String(KeyState, s) }
func ExitCode(code int) slog.Attr       { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func ScheduleID(id string) slog.Attr    { return slog.String(KeyScheduleID, id) }
func ScheduleName(n string) slog.Attr   { return slog.String(KeySchedule, n) }
func Subject(s string) slog.Attr        { return slog.String(KeySubject, s) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr     { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
