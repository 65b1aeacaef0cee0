package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/logging"
	"github.com/dmitrijs2005/noteboard/internal/server/auth"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
	"github.com/dmitrijs2005/noteboard/internal/server/services"
)

const testSecret = "test-secret"

// fakeUserService is an in-memory userService.
type fakeUserService struct {
	users     map[string]*models.User
	passwords map[string]string
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: map[string]*models.User{}, passwords: map[string]string{}}
}

func (f *fakeUserService) Register(ctx context.Context, p services.RegisterParams) (*models.User, error) {
	if _, ok := f.users[p.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u := &models.User{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		CreatedAt: time.Now(),
	}
	f.users[p.Username] = u
	f.passwords[p.Username] = p.Password
	return u, nil
}

func (f *fakeUserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok || f.passwords[username] != password {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

func (f *fakeUserService) Get(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUserService) Delete(ctx context.Context, username string) error {
	if _, ok := f.users[username]; !ok {
		return common.ErrorNotFound
	}
	delete(f.users, username)
	delete(f.passwords, username)
	return nil
}

// fakeNoteService is an in-memory noteService enforcing ownership the same
// way the real one does.
type fakeNoteService struct {
	notes  map[int64]*models.Note
	nextID int64
}

func newFakeNoteService() *fakeNoteService {
	return &fakeNoteService{notes: map[int64]*models.Note{}, nextID: 1}
}

func (f *fakeNoteService) Create(ctx context.Context, owner, title, content string) (*models.Note, error) {
	n := &models.Note{ID: f.nextID, Title: title, Content: content, Owner: owner, CreatedAt: time.Now()}
	f.nextID++
	f.notes[n.ID] = n
	copied := *n
	return &copied, nil
}

func (f *fakeNoteService) Get(ctx context.Context, id int64) (*models.Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNoteService) ListByOwner(ctx context.Context, owner string) ([]*models.Note, error) {
	var result []*models.Note
	for id := int64(1); id < f.nextID; id++ {
		if n, ok := f.notes[id]; ok && n.Owner == owner {
			copied := *n
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeNoteService) Update(ctx context.Context, id int64, owner, title, content string) error {
	n, ok := f.notes[id]
	if !ok {
		return common.ErrorNotFound
	}
	if n.Owner != owner {
		return common.ErrorUnauthorized
	}
	n.Title = title
	n.Content = content
	return nil
}

func (f *fakeNoteService) Delete(ctx context.Context, id int64, owner string) error {
	n, ok := f.notes[id]
	if !ok {
		return common.ErrorNotFound
	}
	if n.Owner != owner {
		return common.ErrorUnauthorized
	}
	delete(f.notes, id)
	return nil
}

// fakeSessionService is an in-memory sessionService with rotating IDs.
type fakeSessionService struct {
	sessions map[string]*models.Session
	nextID   int
}

func newFakeSessionService() *fakeSessionService {
	return &fakeSessionService{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionService) newSession(username, flash string) *models.Session {
	f.nextID++
	s := &models.Session{
		ID:        fmt.Sprintf("sess-%d", f.nextID),
		Username:  username,
		Flash:     flash,
		CreatedAt: time.Now(),
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakeSessionService) Start(ctx context.Context) (*models.Session, error) {
	return f.newSession("", ""), nil
}

func (f *fakeSessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionService) LogIn(ctx context.Context, oldID, username, flash string) (*models.Session, error) {
	delete(f.sessions, oldID)
	return f.newSession(username, flash), nil
}

func (f *fakeSessionService) LogOut(ctx context.Context, oldID, flash string) (*models.Session, error) {
	delete(f.sessions, oldID)
	return f.newSession("", flash), nil
}

func (f *fakeSessionService) SetFlash(ctx context.Context, id string, message string) error {
	s, ok := f.sessions[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.Flash = message
	return nil
}

func (f *fakeSessionService) ConsumeFlash(ctx context.Context, id string) (string, error) {
	s, ok := f.sessions[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	flash := s.Flash
	s.Flash = ""
	return flash, nil
}

// testEnv bundles a Server wired to fakes plus the fakes themselves.
type testEnv struct {
	server   *Server
	handler  http.Handler
	users    *fakeUserService
	notes    *fakeNoteService
	sessions *fakeSessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	us := newFakeUserService()
	ns := newFakeNoteService()
	ss := newFakeSessionService()

	srv := NewServer("127.0.0.1:0", logger, us, ns, ss, testSecret, time.Minute)

	return &testEnv{
		server:   srv,
		handler:  srv.Handler(),
		users:    us,
		notes:    ns,
		sessions: ss,
	}
}

// startSession creates a session directly in the fake store, logged in as
// username when it is non-empty.
func (e *testEnv) startSession(t *testing.T, username string) *models.Session {
	t.Helper()
	return e.sessions.newSession(username, "")
}

func (e *testEnv) csrfToken(t *testing.T, sessionID string) string {
	t.Helper()
	token, err := auth.GenerateCSRFToken(sessionID, []byte(testSecret), time.Minute)
	if err != nil {
		t.Fatalf("GenerateCSRFToken error: %v", err)
	}
	return token
}

func (e *testEnv) get(t *testing.T, path string, sess *models.Session) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if sess != nil {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.ID})
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func (e *testEnv) post(t *testing.T, path string, sess *models.Session, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess != nil {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.ID})
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}
