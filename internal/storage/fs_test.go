package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	content := []byte(`[{"id":"1"}]`)
	if err := s.Write(ctx, "savedEmails", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(ctx, "savedEmails")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "savedEmails.json")); err != nil {
		t.Errorf("expected savedEmails.json on disk: %v", err)
	}
}

func TestKeyWithExtensionKept(t *testing.T) {
	s := tempStore(t)
	if err := s.Write(context.Background(), "logo.png", []byte("png")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	p, err := s.Path("logo.png")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if filepath.Base(p) != "logo.png" {
		t.Errorf("path = %q, want logo.png", p)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Read(context.Background(), "nope")
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestHas(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	ok, err := s.Has(ctx, "k")
	if err != nil || ok {
		t.Fatalf("Has before write = %v, %v", ok, err)
	}
	_ = s.Write(ctx, "k", []byte("v"))
	ok, err = s.Has(ctx, "k")
	if err != nil || !ok {
		t.Errorf("Has after write = %v, %v", ok, err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	cases := []string{
		"../../etc/passwd",
		"../outside",
		"/etc/shadow",
		"sub/key",
		"",
	}
	for _, k := range cases {
		if _, err := s.Read(ctx, k); err == nil {
			t.Errorf("expected error for key %q", k)
		}
		if err := s.Write(ctx, k, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", k)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Write(ctx, "atomic", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write(ctx, "atomic", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read(ctx, "atomic")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".mailcraft-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/mailcraft-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "mailcraft-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
