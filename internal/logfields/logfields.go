package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPublishID  = "publish_id"
	KeyTrigger    = "trigger"
	KeyOutcome    = "outcome"
	KeyStep       = "step"
	KeyDurationMS = "duration_ms"
	KeyBranch     = "branch"
	KeyRemote     = "remote"
	KeyCommit     = "commit"
	KeyDir        = "dir"
	KeyFile       = "file"
	KeyCommand    = "command"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PublishID(id string) slog.Attr   { return slog.String(KeyPublishID, id) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Remote(r string) slog.Attr       { return slog.String(KeyRemote, r) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
