package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrBadTarget is returned for remote paths that cannot be parsed.
var ErrBadTarget = errors.New("invalid remote path")

// Target is a file on a remote host.
type Target struct {
	User string
	Host string
	Port string // empty means ssh_config or 22
	Path string
}

// HostKey identifies the connection a target needs, ignoring the path.
func (t Target) HostKey() string {
	return t.User + "@" + t.Host + ":" + t.Port
}

func (t Target) String() string {
	var b strings.Builder
	if t.User != "" {
		b.WriteString(t.User)
		b.WriteByte('@')
	}
	b.WriteString(t.Host)
	if t.Port != "" {
		// scp syntax has no port, so fall back to the URL form
		return "ssh://" + b.String() + ":" + t.Port + "/" + strings.TrimPrefix(t.Path, "/")
	}
	b.WriteByte(':')
	b.WriteString(t.Path)
	return b.String()
}

// IsRemote reports whether path names a file on another host, either as
// ssh://[user@]host[:port]/path or scp-style [user@]host:path.
func IsRemote(path string) bool {
	if strings.HasPrefix(path, "ssh://") {
		return true
	}
	colon := strings.IndexByte(path, ':')
	if colon <= 0 {
		return false
	}
	// "C:\x" and "./a:b" are local
	if colon == 1 || strings.ContainsAny(path[:colon], `/\`) {
		return false
	}
	return true
}

// ParseTarget parses a remote path accepted by IsRemote.
func ParseTarget(path string) (Target, error) {
	if strings.HasPrefix(path, "ssh://") {
		u, err := url.Parse(path)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %v", ErrBadTarget, err)
		}
		t := Target{Host: u.Hostname(), Port: u.Port(), Path: u.Path}
		if u.User != nil {
			t.User = u.User.Username()
		}
		if t.Host == "" || t.Path == "" || t.Path == "/" {
			return Target{}, fmt.Errorf("%w: %q", ErrBadTarget, path)
		}
		return t, nil
	}

	if !IsRemote(path) {
		return Target{}, fmt.Errorf("%w: %q is a local path", ErrBadTarget, path)
	}
	colon := strings.IndexByte(path, ':')
	hostPart, filePart := path[:colon], path[colon+1:]
	var t Target
	if at := strings.LastIndexByte(hostPart, '@'); at >= 0 {
		t.User = hostPart[:at]
		hostPart = hostPart[at+1:]
	}
	t.Host = hostPart
	t.Path = filePart
	if t.Host == "" || t.Path == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrBadTarget, path)
	}
	return t, nil
}
