package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger for the HTTP layer. Nop until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("GPTBRIDGE_HTTP_LOG_LEVEL"))

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logEvent returns an event tagged with the request id, or nil when lvl
// suppresses it.
func logEvent(r *http.Request, lvl LogLevel, min LogLevel) *zerolog.Event {
	if lvl < min {
		return nil
	}
	var ev *zerolog.Event
	if min >= LevelDebug {
		ev = zlog.Debug()
	} else {
		ev = zlog.Info()
	}
	ev = ev.Str("path", r.URL.Path)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	return ev
}

func logEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	min := LevelInfo
	if err != nil {
		min = LevelError
	}
	if ev := logEvent(r, lvl, min); ev != nil {
		ev.Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("generate end")
	}
}
