package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/funvibe/ljson/internal/diagnostics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "terms.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e, err := s.Put(ctx, "square", `($, x) => ($("*", x, x))`)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if e.Text != `(v0,v1)=>(v0("*",v1,v1))` {
		t.Errorf("stored text = %s", e.Text)
	}
	if e.Arity != 2 {
		t.Errorf("Arity = %d, want 2", e.Arity)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", e.ID, err)
	}

	byID, err := s.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get by id: %v", err)
	}
	if byID.Name != "square" || byID.Text != e.Text {
		t.Errorf("Get by id = %+v", byID)
	}

	tm, err := byID.Term()
	if err != nil {
		t.Fatalf("Term: %v", err)
	}
	if tm.String() != e.Text {
		t.Errorf("Term = %s", tm)
	}
}

func TestPutReplacesKeepsID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Put(ctx, "k", `(x)=>(x)`)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Put(ctx, "k", `[1,2]`)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed: %s -> %s", first.ID, second.ID)
	}
	if second.Text != "[1,2]" || second.Arity != -1 {
		t.Errorf("replaced entry = %+v", second)
	}
}

func TestPutRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Put(ctx, "leak", `(a)=>(process)`)
	if !diagnostics.Is(err, diagnostics.ErrP002) {
		t.Errorf("Put free variable: %v, want P002", err)
	}
	if _, err := s.Put(ctx, " ", `1`); err == nil {
		t.Error("Put with empty name should fail")
	}
	if _, err := s.Get(ctx, "leak"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected term was stored: %v", err)
	}
}

func TestListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"b", "a", "c"} {
		if _, err := s.Put(ctx, name, `null`); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Name != "a" || entries[2].Name != "c" {
		t.Errorf("List = %+v", entries)
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	entries, _ = s.List(ctx)
	if len(entries) != 2 {
		t.Errorf("after delete: %d entries", len(entries))
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "terms.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, "id", `(x)=>(x)`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	e, err := s.Get(ctx, "id")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if e.Text != "(v0)=>(v0)" {
		t.Errorf("Text = %s", e.Text)
	}
}

func TestIDWinsOverName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Put(ctx, "first", `1`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, first.ID, `2`); err == nil {
		t.Fatal("Put with a uuid name should fail")
	}

	// A row from before names were checked, named after another row's id.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO terms (id, name, text, arity, created_at, updated_at)
		VALUES (?, ?, '2', -1, 0, 0)`, uuid.New().String(), first.ID)
	if err != nil {
		t.Fatal(err)
	}

	e, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "first" {
		t.Errorf("Get(%s) = %s, want the entry with that id", first.ID, e.Name)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	entries, _ := s.List(ctx)
	if len(entries) != 1 || entries[0].Name != first.ID {
		t.Errorf("Delete removed more than the id match: %+v", entries)
	}
}
