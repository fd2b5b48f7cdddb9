package telemetry

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/user_agent"
	"golang.org/x/time/rate"

	"notifyadmin/internal/observability"
)

// Sink delivers a serialised analytics event somewhere (SQS queue, events
// API). Delivery is best-effort.
type Sink interface {
	SendEvent(ctx context.Context, eventType string, data map[string]any) error
}

// Emitter fires analytics events without ever affecting the caller: failures
// are logged and swallowed, and a rate budget silently drops excess events.
type Emitter struct {
	Sink    Sink
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func NewEmitter(sink Sink, eventsPerSecond float64, burst int, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		Sink:    sink,
		Limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
		Logger:  logger,
	}
}

// Emit sends one event. It never returns an error.
func (e *Emitter) Emit(ctx context.Context, eventType string, r *http.Request, userID string) {
	if e == nil || e.Sink == nil {
		return
	}
	if !e.Limiter.Allow() {
		observability.EventsEmitted.WithLabelValues("dropped").Inc()
		return
	}
	data := eventData(r)
	if userID != "" {
		data["user_id"] = userID
	}
	if err := e.Sink.SendEvent(ctx, eventType, data); err != nil {
		observability.EventsEmitted.WithLabelValues("error").Inc()
		e.Logger.Error("error creating event", "event_type", eventType, "err", err)
		return
	}
	observability.EventsEmitted.WithLabelValues("ok").Inc()
}

// OnUserLoggedIn records a successful login.
func (e *Emitter) OnUserLoggedIn(ctx context.Context, r *http.Request, userID string) {
	e.Emit(ctx, "successful_login", r, userID)
}

func eventData(r *http.Request) map[string]any {
	return map[string]any{
		"ip_address":          remoteAddr(r),
		"browser_fingerprint": browserFingerprint(r.UserAgent()),
	}
}

func browserFingerprint(uaString string) map[string]string {
	ua := user_agent.New(uaString)
	name, version := ua.Browser()
	return map[string]string{
		"browser":           name,
		"version":           version,
		"platform":          ua.Platform(),
		"user_agent_string": uaString,
	}
}

// remoteAddr prefers the first X-Forwarded-For hop; this may not be right
// for every proxy setup.
func remoteAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
