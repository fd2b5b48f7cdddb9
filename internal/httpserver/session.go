package httpserver

import (
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"notifyadmin/internal/session"
)

const sessionCookie = "notify_admin_session"

func newSessionID() string {
	t := time.Now().UTC()
	return "sess_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// loadSession finds or creates the caller's session. A broken store read is
// logged and treated as an empty session rather than failing the page.
func (a *API) loadSession(w http.ResponseWriter, r *http.Request) (string, *session.State) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	}
	if id == "" {
		id = newSessionID()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	st, err := a.Sessions.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			a.log().Error("session load failed", "err", err)
		}
		st = &session.State{}
	}
	return id, st
}

// saveSession persists the state; on failure it answers the request with a
// 502 and returns false.
func (a *API) saveSession(w http.ResponseWriter, r *http.Request, id string, st *session.State) bool {
	if err := a.Sessions.Put(r.Context(), id, st); err != nil {
		a.log().Error("session save failed", "err", err)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return false
	}
	return true
}
