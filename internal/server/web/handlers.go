package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

func (s *Server) home(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	http.Redirect(w, r, "/register", http.StatusFound)
}

func (s *Server) showRegisterForm(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	data := s.newViewData(r, sess)
	data.Form = &RegisterForm{}
	s.render(w, r, "register.html", data)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	form := parseRegisterForm(r)
	errs := checkForm(form)
	if len(errs) > 0 {
		s.renderRegisterForm(w, r, sess, form, errs)
		return
	}

	user, err := s.users.Register(r.Context(), registerParams(form))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			errs["Username"] = "Username already taken."
			s.renderRegisterForm(w, r, sess, form, errs)
			return
		}
		s.internalError(w, r, "registration failed", err)
		return
	}

	flash := fmt.Sprintf("User %v added!", user.FirstName)
	authed, err := s.sessions.LogIn(r.Context(), sess.ID, user.Username, flash)
	if err != nil {
		s.internalError(w, r, "session rotation failed", err)
		return
	}
	s.setSessionCookie(w, authed.ID)

	http.Redirect(w, r, "/users/"+user.Username, http.StatusFound)
}

func (s *Server) renderRegisterForm(w http.ResponseWriter, r *http.Request, sess *models.Session, form *RegisterForm, errs map[string]string) {
	data := s.newViewData(r, sess)
	data.Form = form
	data.Errors = errs
	s.render(w, r, "register.html", data)
}

func (s *Server) showLoginForm(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	data := s.newViewData(r, sess)
	data.Form = &LoginForm{}
	s.render(w, r, "login.html", data)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	form := parseLoginForm(r)
	errs := checkForm(form)
	if len(errs) > 0 {
		s.renderLoginForm(w, r, sess, form, errs)
		return
	}

	user, err := s.users.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			errs["Username"] = "Bad name/password"
			s.renderLoginForm(w, r, sess, form, errs)
			return
		}
		s.internalError(w, r, "login failed", err)
		return
	}

	authed, err := s.sessions.LogIn(r.Context(), sess.ID, user.Username, "")
	if err != nil {
		s.internalError(w, r, "session rotation failed", err)
		return
	}
	s.setSessionCookie(w, authed.ID)

	http.Redirect(w, r, "/users/"+user.Username, http.StatusFound)
}

func (s *Server) renderLoginForm(w http.ResponseWriter, r *http.Request, sess *models.Session, form *LoginForm, errs map[string]string) {
	data := s.newViewData(r, sess)
	data.Form = form
	data.Errors = errs
	s.render(w, r, "login.html", data)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	anon, err := s.sessions.LogOut(r.Context(), sess.ID, "You have been logged out.")
	if err != nil {
		s.internalError(w, r, "logout failed", err)
		return
	}
	s.setSessionCookie(w, anon.ID)

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) showUserPage(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	username := r.PathValue("username")

	if !s.authorize(w, r, sess, username) {
		return
	}

	user, err := s.users.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.internalError(w, r, "user lookup failed", err)
		return
	}

	notes, err := s.notes.ListByOwner(r.Context(), username)
	if err != nil {
		s.internalError(w, r, "note listing failed", err)
		return
	}

	data := s.newViewData(r, sess)
	data.User = user
	data.Notes = notes
	s.render(w, r, "user.html", data)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	username := r.PathValue("username")

	if !s.authorize(w, r, sess, username) {
		return
	}
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/users/"+username, http.StatusFound)
		return
	}

	if err := s.users.Delete(r.Context(), username); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.internalError(w, r, "account deletion failed", err)
		return
	}

	// The cascade removed the caller's session too; start a fresh one.
	anon, err := s.sessions.Start(r.Context())
	if err != nil {
		s.internalError(w, r, "session start failed", err)
		return
	}
	s.setSessionCookie(w, anon.ID)

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) showAddNoteForm(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	username := r.PathValue("username")

	if !s.authorize(w, r, sess, username) {
		return
	}

	data := s.newViewData(r, sess)
	data.User = &models.User{Username: username}
	data.Form = &NoteForm{}
	s.render(w, r, "note_add.html", data)
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	username := r.PathValue("username")

	if !s.authorize(w, r, sess, username) {
		return
	}
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/users/"+username, http.StatusFound)
		return
	}

	form := parseNoteForm(r)
	errs := checkForm(form)
	if len(errs) > 0 {
		data := s.newViewData(r, sess)
		data.User = &models.User{Username: username}
		data.Form = form
		data.Errors = errs
		s.render(w, r, "note_add.html", data)
		return
	}

	if _, err := s.notes.Create(r.Context(), username, form.Title, form.Content); err != nil {
		s.internalError(w, r, "note creation failed", err)
		return
	}

	http.Redirect(w, r, "/users/"+username, http.StatusFound)
}

func (s *Server) showUpdateNoteForm(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !s.requireLogin(w, r, sess) {
		return
	}
	note, ok := s.fetchNote(w, r)
	if !ok {
		return
	}
	if !s.authorize(w, r, sess, note.Owner) {
		return
	}

	data := s.newViewData(r, sess)
	data.Note = note
	data.Form = &NoteForm{Title: note.Title, Content: note.Content}
	s.render(w, r, "note_update.html", data)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !s.requireLogin(w, r, sess) {
		return
	}
	note, ok := s.fetchNote(w, r)
	if !ok {
		return
	}
	if !s.authorize(w, r, sess, note.Owner) {
		return
	}
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/users/"+note.Owner, http.StatusFound)
		return
	}

	form := parseNoteForm(r)
	errs := checkForm(form)
	if len(errs) > 0 {
		data := s.newViewData(r, sess)
		data.Note = note
		data.Form = form
		data.Errors = errs
		s.render(w, r, "note_update.html", data)
		return
	}

	if err := s.notes.Update(r.Context(), note.ID, sess.Username, form.Title, form.Content); err != nil {
		s.internalError(w, r, "note update failed", err)
		return
	}

	http.Redirect(w, r, "/users/"+note.Owner, http.StatusFound)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if !s.requireLogin(w, r, sess) {
		return
	}
	note, ok := s.fetchNote(w, r)
	if !ok {
		return
	}
	if !s.authorize(w, r, sess, note.Owner) {
		return
	}
	if !s.checkCSRF(r, sess) {
		http.Redirect(w, r, "/users/"+note.Owner, http.StatusFound)
		return
	}

	if err := s.notes.Delete(r.Context(), note.ID, sess.Username); err != nil {
		s.internalError(w, r, "note deletion failed", err)
		return
	}

	http.Redirect(w, r, "/users/"+note.Owner, http.StatusFound)
}

// fetchNote resolves the {id} path segment. A malformed id or a missing row
// both answer 404, before any ownership check runs.
func (s *Server) fetchNote(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	note, err := s.notes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		s.internalError(w, r, "note lookup failed", err)
		return nil, false
	}

	return note, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(r.Context(), msg, "error", err.Error())
	http.Error(w, "internal error", http.StatusInternalServerError)
}
