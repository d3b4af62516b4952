package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// LocalStore
// ---------------------------------------------------------------------------

func TestLocalStoreRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "note.txt")
	var s LocalStore
	if err := s.WriteFile(p, []byte("content")); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	data, err := s.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if string(data) != "content" {
		t.Errorf("ReadFile = %q, want content", data)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("file perm = %o, want 644", perm)
	}
}

func TestLocalStoreMissing(t *testing.T) {
	_, err := LocalStore{}.ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	if !os.IsNotExist(err) {
		t.Errorf("ReadFile missing error = %v, want not-exist", err)
	}
}

func TestLocalStoreDirectory(t *testing.T) {
	_, err := LocalStore{}.ReadFile(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "directory") {
		t.Errorf("ReadFile dir error = %v, want directory error", err)
	}
}

func TestLocalStoreTooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(p, make([]byte, MaxFileSize+1), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LocalStore{}.ReadFile(p)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("ReadFile big error = %v, want ErrTooLarge", err)
	}
}

func TestLocalStoreWriteBadDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing", "dir", "f.txt")
	if err := (LocalStore{}).WriteFile(p, []byte("x")); err == nil {
		t.Error("WriteFile into a missing directory should fail")
	}
}
