package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/noteboard/internal/server/auth"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parsePage(page string) *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page))
}

var pageTemplates = map[string]*template.Template{
	"register.html":    parsePage("register.html"),
	"login.html":       parsePage("login.html"),
	"user.html":        parsePage("user.html"),
	"note_add.html":    parsePage("note_add.html"),
	"note_update.html": parsePage("note_update.html"),
}

// viewData is the single payload handed to page templates.
type viewData struct {
	Flash     string
	CSRFToken string
	Session   *models.Session
	Errors    map[string]string
	Form      any
	User      *models.User
	Notes     []*models.Note
	Note      *models.Note
}

// newViewData consumes the session's pending flash and mints a CSRF token
// for the forms on the page about to render.
func (s *Server) newViewData(r *http.Request, sess *models.Session) *viewData {
	flash, err := s.sessions.ConsumeFlash(r.Context(), sess.ID)
	if err != nil {
		flash = ""
	}

	token, err := auth.GenerateCSRFToken(sess.ID, s.csrfSecret, s.csrfValidity)
	if err != nil {
		s.logger.Error(r.Context(), "failed to mint csrf token", "error", err.Error())
		token = ""
	}

	return &viewData{
		Flash:     flash,
		CSRFToken: token,
		Session:   sess,
		Errors:    map[string]string{},
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data *viewData) {
	t, ok := pageTemplates[page]
	if !ok {
		s.logger.Error(r.Context(), "unknown page template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so a template failure yields a clean 500
	// instead of a half-written page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error(r.Context(), "template error", "page", page, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
