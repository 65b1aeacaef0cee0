package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
	notesrepo "github.com/dmitrijs2005/noteboard/internal/server/repositories/notes"
	sessionsrepo "github.com/dmitrijs2005/noteboard/internal/server/repositories/sessions"
	usersrepo "github.com/dmitrijs2005/noteboard/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// fakeUsersRepo is an in-memory users.Repository that records operations in
// the shared call log.
type fakeUsersRepo struct {
	users     map[string]*models.User
	createErr error
	log       *[]string
}

func newFakeUsersRepo(log *[]string) *fakeUsersRepo {
	return &fakeUsersRepo{users: map[string]*models.User{}, log: log}
}

func (f *fakeUsersRepo) record(op string) {
	if f.log != nil {
		*f.log = append(*f.log, op)
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.record("users.Create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.users[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, username string) error {
	f.record("users.Delete")
	if _, ok := f.users[username]; !ok {
		return common.ErrorNotFound
	}
	delete(f.users, username)
	return nil
}

// fakeNotesRepo is an in-memory notes.Repository.
type fakeNotesRepo struct {
	notes  map[int64]*models.Note
	nextID int64
	log    *[]string
}

func newFakeNotesRepo(log *[]string) *fakeNotesRepo {
	return &fakeNotesRepo{notes: map[int64]*models.Note{}, nextID: 1, log: log}
}

func (f *fakeNotesRepo) record(op string) {
	if f.log != nil {
		*f.log = append(*f.log, op)
	}
}

func (f *fakeNotesRepo) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	f.record("notes.Create")
	n.ID = f.nextID
	f.nextID++
	copied := *n
	f.notes[n.ID] = &copied
	return n, nil
}

func (f *fakeNotesRepo) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNotesRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Note, error) {
	var result []*models.Note
	for id := int64(1); id < f.nextID; id++ {
		if n, ok := f.notes[id]; ok && n.Owner == owner {
			copied := *n
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeNotesRepo) Update(ctx context.Context, n *models.Note) error {
	f.record("notes.Update")
	stored, ok := f.notes[n.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Title = n.Title
	stored.Content = n.Content
	return nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, id int64) error {
	f.record("notes.Delete")
	if _, ok := f.notes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeNotesRepo) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	f.record("notes.DeleteByOwner")
	var n int64
	for id, note := range f.notes {
		if note.Owner == owner {
			delete(f.notes, id)
			n++
		}
	}
	return n, nil
}

// fakeSessionsRepo is an in-memory sessions.Repository.
type fakeSessionsRepo struct {
	sessions map[string]*models.Session
	log      *[]string
}

func newFakeSessionsRepo(log *[]string) *fakeSessionsRepo {
	return &fakeSessionsRepo{sessions: map[string]*models.Session{}, log: log}
}

func (f *fakeSessionsRepo) record(op string) {
	if f.log != nil {
		*f.log = append(*f.log, op)
	}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	f.record("sessions.Create")
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionsRepo) SetFlash(ctx context.Context, id string, message string) error {
	s, ok := f.sessions[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.Flash = message
	return nil
}

func (f *fakeSessionsRepo) ConsumeFlash(ctx context.Context, id string) (string, error) {
	s, ok := f.sessions[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	flash := s.Flash
	s.Flash = ""
	return flash, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	f.record("sessions.Delete")
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionsRepo) DeleteByUsername(ctx context.Context, username string) error {
	f.record("sessions.DeleteByUsername")
	for id, s := range f.sessions {
		if s.Username == username {
			delete(f.sessions, id)
		}
	}
	return nil
}

// fakeRepoManager vends the fakes regardless of the DBTX handed in.
type fakeRepoManager struct {
	u *fakeUsersRepo
	n *fakeNotesRepo
	s *fakeSessionsRepo
}

func newFakeRepoManager(log *[]string) *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(log),
		n: newFakeNotesRepo(log),
		s: newFakeSessionsRepo(log),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Notes(db dbx.DBTX) notesrepo.Repository       { return m.n }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository { return m.s }
