package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFormat     = "format"
	KeyRunID      = "run_id"
	KeyKind       = "kind"
	KeyPolicy     = "policy"
	KeyDocID      = "doc_id"
	KeySidebar    = "sidebar"
	KeyTarget     = "target"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyTrigger    = "trigger"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Format(f string) slog.Attr        { return slog.String(KeyFormat, f) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Policy(p string) slog.Attr        { return slog.String(KeyPolicy, p) }
func DocID(id string) slog.Attr        { return slog.String(KeyDocID, id) }
func Sidebar(s string) slog.Attr       { return slog.String(KeySidebar, s) }
func Target(t string) slog.Attr        { return slog.String(KeyTarget, t) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Trigger(t string) slog.Attr       { return slog.String(KeyTrigger, t) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
