package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// SSHHost
// ---------------------------------------------------------------------------

func TestSSHHostAddressWithHostName(t *testing.T) {
	h := SSHHost{Alias: "box", HostName: "10.0.0.5"}
	if got := h.Address(); got != "10.0.0.5" {
		t.Errorf("Address() = %q, want %q", got, "10.0.0.5")
	}
}

func TestSSHHostAddressFallback(t *testing.T) {
	h := SSHHost{Alias: "box"}
	if got := h.Address(); got != "box" {
		t.Errorf("Address() = %q, want %q", got, "box")
	}
}

// ---------------------------------------------------------------------------
// ParseSSHConfig
// ---------------------------------------------------------------------------

const sampleSSHConfig = `
# personal boxes
Host devbox
    HostName dev.example.com
    User alice
    Port 2222
    IdentityFile ~/.ssh/id_dev

Host *.internal
    User ops

Host web1 web2
    HostName=web.example.com
    User = deploy

Host quoted
    IdentityFile "~/.ssh/id quoted"
`

func TestParseSSHConfigBasic(t *testing.T) {
	cfg := ParseSSHConfig(strings.NewReader(sampleSSHConfig))
	h, ok := cfg.Lookup("devbox")
	if !ok {
		t.Fatal("devbox not found")
	}
	if h.HostName != "dev.example.com" || h.User != "alice" || h.Port != "2222" {
		t.Errorf("devbox = %+v", h)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".ssh", "id_dev"); h.IdentityFile != want {
		t.Errorf("IdentityFile = %q, want %q", h.IdentityFile, want)
	}
}

func TestParseSSHConfigSkipsWildcards(t *testing.T) {
	cfg := ParseSSHConfig(strings.NewReader(sampleSSHConfig))
	for _, h := range cfg.Hosts {
		if strings.Contains(h.Alias, "*") {
			t.Errorf("wildcard host %q should be skipped", h.Alias)
		}
	}
}

func TestParseSSHConfigMultipleAliases(t *testing.T) {
	cfg := ParseSSHConfig(strings.NewReader(sampleSSHConfig))
	for _, alias := range []string{"web1", "web2"} {
		h, ok := cfg.Lookup(alias)
		if !ok {
			t.Fatalf("%s not found", alias)
		}
		if h.HostName != "web.example.com" || h.User != "deploy" {
			t.Errorf("%s = %+v", alias, h)
		}
	}
}

func TestParseSSHConfigQuotedValue(t *testing.T) {
	cfg := ParseSSHConfig(strings.NewReader(sampleSSHConfig))
	h, _ := cfg.Lookup("quoted")
	if !strings.HasSuffix(h.IdentityFile, "id quoted") {
		t.Errorf("IdentityFile = %q, want suffix %q", h.IdentityFile, "id quoted")
	}
}

func TestParseSSHConfigEmpty(t *testing.T) {
	cfg := ParseSSHConfig(strings.NewReader(""))
	if len(cfg.Hosts) != 0 {
		t.Errorf("expected 0 hosts, got %d", len(cfg.Hosts))
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	cfg := SSHConfig{Hosts: []SSHHost{{Alias: "DevBox"}}}
	if _, ok := cfg.Lookup("devbox"); !ok {
		t.Error("Lookup should ignore case")
	}
	if _, ok := cfg.Lookup("other"); ok {
		t.Error("Lookup should miss unknown hosts")
	}
}

func TestLoadSSHConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if cfg := LoadSSHConfig(); len(cfg.Hosts) != 0 {
		t.Errorf("expected no hosts without ~/.ssh/config, got %d", len(cfg.Hosts))
	}
}

// ---------------------------------------------------------------------------
// splitDirective / expandTilde
// ---------------------------------------------------------------------------

func TestSplitDirective(t *testing.T) {
	tests := []struct {
		line, key, value string
	}{
		{"HostName example.com", "HostName", "example.com"},
		{"HostName=example.com", "HostName", "example.com"},
		{"Port = 22", "Port", "22"},
		{"User\tbob", "User", "bob"},
		{"Lonely", "Lonely", ""},
	}
	for _, tt := range tests {
		k, v := splitDirective(tt.line)
		if k != tt.key || v != tt.value {
			t.Errorf("splitDirective(%q) = (%q, %q), want (%q, %q)", tt.line, k, v, tt.key, tt.value)
		}
	}
}

func TestExpandTilde(t *testing.T) {
	if got := expandTilde("~", "/h"); got != "/h" {
		t.Errorf("expandTilde(~) = %q", got)
	}
	if got := expandTilde("~/k", "/h"); got != "/h/k" {
		t.Errorf("expandTilde(~/k) = %q", got)
	}
	if got := expandTilde("/abs", "/h"); got != "/abs" {
		t.Errorf("expandTilde(/abs) = %q", got)
	}
}
