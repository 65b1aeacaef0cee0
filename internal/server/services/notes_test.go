package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/noteboard/internal/common"
)

func TestNoteCreate_RoundTrip(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := newFakeRepoManager(nil)
	s := NewNoteService(db, rm)

	created, err := s.Create(context.Background(), "alice", "Groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated id, got %d", created.ID)
	}

	got, err := s.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Title != "Groceries" || got.Content != "milk, eggs" || got.Owner != "alice" {
		t.Fatalf("round trip mutated note: %+v", got)
	}
}

func TestNoteUpdate_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := newFakeRepoManager(nil)
	s := NewNoteService(db, rm)

	created, err := s.Create(context.Background(), "alice", "draft", "old")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := s.Update(context.Background(), created.ID, "alice", "final", "new"); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	got, _ := s.Get(context.Background(), created.ID)
	if got.Title != "final" || got.Content != "new" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Owner != "alice" {
		t.Fatalf("owner must be immutable: %+v", got)
	}
}

func TestNoteUpdate_WrongOwnerLeavesNoteUnchanged(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newFakeRepoManager(nil)
	s := NewNoteService(db, rm)

	created, err := s.Create(context.Background(), "alice", "private", "secret")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	err = s.Update(context.Background(), created.ID, "bob", "hacked", "gotcha")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}

	got, _ := s.Get(context.Background(), created.ID)
	if got.Title != "private" || got.Content != "secret" {
		t.Fatalf("note mutated by non-owner: %+v", got)
	}
}

func TestNoteDelete_WrongOwner(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newFakeRepoManager(nil)
	s := NewNoteService(db, rm)

	created, err := s.Create(context.Background(), "alice", "private", "secret")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	err = s.Delete(context.Background(), created.ID, "bob")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}

	if _, err := s.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("note deleted by non-owner: %v", err)
	}
}

func TestNoteGet_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager(nil)
	s := NewNoteService(db, rm)

	_, err := s.Get(context.Background(), 404)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
