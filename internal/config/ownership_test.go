package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFixOwnership_LeavesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	FixOwnership(p)

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestFixOwnership_NonexistentPath(t *testing.T) {
	FixOwnership(filepath.Join(t.TempDir(), "missing", "config.json"))
}

func TestInsideHome(t *testing.T) {
	tests := []struct {
		dir  string
		want bool
	}{
		{"/home/u/.config/notepad", true},
		{"/home/u/.config", true},
		{"/home/u", false},
		{"/home", false},
		{"/etc", false},
		{"/home/u/..foo", true},
	}
	for _, tt := range tests {
		if got := insideHome("/home/u", tt.dir); got != tt.want {
			t.Errorf("insideHome(%q) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestOwnerOfMissing(t *testing.T) {
	if _, _, ok := ownerOf(filepath.Join(t.TempDir(), "nope")); ok {
		t.Error("ownerOf should fail for a missing path")
	}
}
