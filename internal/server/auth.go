package server

import (
	"net/http"

	"go.uber.org/zap"

	"chaindrive/internal/services/identity"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	b := bound(r)
	state := identity.NewState()
	b.cookie.Values[keyState] = state
	if err := b.cookie.Save(r, w); err != nil {
		ErrorResponse(w, err)
		return
	}
	http.Redirect(w, r, s.identity.LoginURL(state), http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	b := bound(r)
	want, _ := b.cookie.Values[keyState].(string)
	delete(b.cookie.Values, keyState)
	if err := b.cookie.Save(r, w); err != nil {
		ErrorResponse(w, err)
		return
	}

	q := r.URL.Query()
	if want == "" || q.Get("state") != want {
		s.log.Warn("oauth state mismatch", zap.String("session", b.sess.ID()))
		JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid oauth state"})
		return
	}
	if e := q.Get("error"); e != "" {
		s.log.Warn("oauth consent denied", zap.String("session", b.sess.ID()), zap.String("error", e))
		http.Redirect(w, r, s.cfg.AppURL, http.StatusFound)
		return
	}
	// Failures are logged by the controller; the user lands signed out.
	_, _ = s.identity.Complete(r.Context(), b.sess, q.Get("code"))
	http.Redirect(w, r, s.cfg.AppURL, http.StatusFound)
}

// logout clears the identity and drops the server session; the next request
// starts a fresh one.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	b := bound(r)
	s.identity.Logout(b.sess)
	s.registry.Delete(b.sess.ID())
	delete(b.cookie.Values, keySession)
	if err := b.cookie.Save(r, w); err != nil {
		ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
