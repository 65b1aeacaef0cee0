package web

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/noteboard/internal/server/auth"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

const sessionCookieName = "noteboard_session"

// sessionHandler is an http.HandlerFunc that additionally receives the
// caller's session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *models.Session)

// withSession resolves the caller's session cookie to a session row, starting
// a fresh anonymous session when the cookie is missing or stale.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if c, err := r.Cookie(sessionCookieName); err == nil {
			if sess, err := s.sessions.Get(r.Context(), c.Value); err == nil {
				next(w, r, sess)
				return
			}
		}

		sess, err := s.sessions.Start(r.Context())
		if err != nil {
			s.logger.Error(r.Context(), "failed to start session", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.setSessionCookie(w, sess.ID)

		next(w, r, sess)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// authorize implements the session guard: the caller must be authenticated
// as owner. On failure it stores a flash notice and redirects home; the
// response is identical whether the caller is anonymous or a different user.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, sess *models.Session, owner string) bool {
	if sess.Authenticated() && sess.Username == owner {
		return true
	}

	if err := s.sessions.SetFlash(r.Context(), sess.ID, "You must be logged in to view!"); err != nil {
		s.logger.Warn(r.Context(), "failed to set flash", "error", err.Error())
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return false
}

// requireLogin gates routes whose resource owner is only known after a
// lookup: anonymous callers are turned away before anything is fetched, so
// the response cannot reveal whether the resource exists.
func (s *Server) requireLogin(w http.ResponseWriter, r *http.Request, sess *models.Session) bool {
	if sess.Authenticated() {
		return true
	}

	if err := s.sessions.SetFlash(r.Context(), sess.ID, "You must be logged in to view!"); err != nil {
		s.logger.Warn(r.Context(), "failed to set flash", "error", err.Error())
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return false
}

// checkCSRF verifies the anti-forgery token submitted with a mutating form.
func (s *Server) checkCSRF(r *http.Request, sess *models.Session) bool {
	token := r.PostFormValue("csrf_token")
	if token == "" {
		return false
	}
	return auth.VerifyCSRFToken(token, sess.ID, s.csrfSecret) == nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
