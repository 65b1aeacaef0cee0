// Package web serves the HTML surface of the application: registration,
// login, and per-user note management, all gated by the session guard.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/noteboard/internal/logging"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
	"github.com/dmitrijs2005/noteboard/internal/server/services"
)

type userService interface {
	Register(ctx context.Context, p services.RegisterParams) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Get(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type noteService interface {
	Create(ctx context.Context, owner, title, content string) (*models.Note, error)
	Get(ctx context.Context, id int64) (*models.Note, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Note, error)
	Update(ctx context.Context, id int64, owner, title, content string) error
	Delete(ctx context.Context, id int64, owner string) error
}

type sessionService interface {
	Start(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	LogIn(ctx context.Context, oldID, username, flash string) (*models.Session, error)
	LogOut(ctx context.Context, oldID, flash string) (*models.Session, error)
	SetFlash(ctx context.Context, id string, message string) error
	ConsumeFlash(ctx context.Context, id string) (string, error)
}

type Server struct {
	address      string
	logger       logging.Logger
	users        userService
	notes        noteService
	sessions     sessionService
	csrfSecret   []byte
	csrfValidity time.Duration
}

func NewServer(a string, l logging.Logger, us userService, ns noteService, ss sessionService, secretKey string, csrfValidity time.Duration) *Server {
	return &Server{
		address:      a,
		logger:       l.With("module", "web_server"),
		users:        us,
		notes:        ns,
		sessions:     ss,
		csrfSecret:   []byte(secretKey),
		csrfValidity: csrfValidity,
	}
}

// Handler builds the route table. Every route runs with a loaded (or freshly
// started) session.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.withSession(s.home))
	mux.HandleFunc("GET /register", s.withSession(s.showRegisterForm))
	mux.HandleFunc("POST /register", s.withSession(s.register))
	mux.HandleFunc("GET /login", s.withSession(s.showLoginForm))
	mux.HandleFunc("POST /login", s.withSession(s.login))
	mux.HandleFunc("POST /logout", s.withSession(s.logout))
	mux.HandleFunc("GET /users/{username}", s.withSession(s.showUserPage))
	mux.HandleFunc("POST /users/{username}/delete", s.withSession(s.deleteUser))
	mux.HandleFunc("GET /users/{username}/notes/add", s.withSession(s.showAddNoteForm))
	mux.HandleFunc("POST /users/{username}/notes/add", s.withSession(s.addNote))
	mux.HandleFunc("GET /notes/{id}/update", s.withSession(s.showUpdateNoteForm))
	mux.HandleFunc("POST /notes/{id}/update", s.withSession(s.updateNote))
	mux.HandleFunc("POST /notes/{id}/delete", s.withSession(s.deleteNote))

	return s.logRequests(mux)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
