package config

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// FixOwnership hands path, and any parent directories between it and the
// home directory that root created, to the owner of the home directory.
// This covers running as uid 0 inside a dev container whose home belongs to
// a regular user. It does nothing for non-root processes or a root-owned
// home.
func FixOwnership(path string) {
	if os.Getuid() != 0 {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return
	}
	uid, gid, ok := ownerOf(home)
	if !ok || uid == 0 {
		return
	}

	_ = os.Lchown(path, uid, gid)
	for dir := filepath.Dir(path); insideHome(home, dir); dir = filepath.Dir(dir) {
		du, _, ok := ownerOf(dir)
		if !ok || du == uid {
			return
		}
		_ = os.Lchown(dir, uid, gid)
	}
}

func ownerOf(path string) (uid, gid int, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return int(st.Uid), int(st.Gid), true
}

// insideHome reports whether dir is strictly below home.
func insideHome(home, dir string) bool {
	rel, err := filepath.Rel(home, dir)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
