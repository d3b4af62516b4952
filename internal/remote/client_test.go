package remote

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notepad/internal/config"
	"notepad/internal/document"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// testSSHServer starts an SSH server that accepts publickey auth for
// testuser with clientKey. It returns the listen address and host key.
func testSSHServer(t *testing.T, clientKey ssh.PublicKey) (string, ssh.PublicKey) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	hostSigner, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if c.User() == "testuser" && bytes.Equal(key.Marshal(), clientKey.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown key for %s", c.User())
		},
	}
	cfg.AddHostKey(hostSigner)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(conn, cfg)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-done
	})
	return ln.Addr().String(), hostSigner.PublicKey()
}

func serveConn(conn net.Conn, cfg *ssh.ServerConfig) {
	defer conn.Close()
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	defer sshConn.Close()
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		_ = ch.Reject(ssh.Prohibited, "no sessions in tests")
	}
}

// writeClientKey writes a fresh ed25519 key in OpenSSH format and returns
// its path and public half.
func writeClientKey(t *testing.T, dir string) (string, ssh.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return path, sshPub
}

func writeKnownHosts(t *testing.T, dir, addr string, key ssh.PublicKey) string {
	t.Helper()
	path := filepath.Join(dir, "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(addr)}, key) + "\n"
	if err := os.WriteFile(path, []byte(line), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// testAgent serves an SSH agent holding key on a unix socket and points
// SSH_AUTH_SOCK at it. A value is sent on the returned channel each time a
// client connection to the agent is closed.
func testAgent(t *testing.T, key ed25519.PrivateKey) <-chan struct{} {
	t.Helper()
	keyring := agent.NewKeyring()
	if err := keyring.Add(agent.AddedKey{PrivateKey: key}); err != nil {
		t.Fatal(err)
	}
	dir, err := os.MkdirTemp("", "agent")
	if err != nil {
		t.Fatal(err)
	}
	sock := filepath.Join(dir, "s")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = ln.Close()
		_ = os.RemoveAll(dir)
	})
	t.Setenv("SSH_AUTH_SOCK", sock)

	closed := make(chan struct{}, 8)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				_ = agent.ServeAgent(keyring, conn)
				_ = conn.Close()
				closed <- struct{}{}
			}()
		}
	}()
	return closed
}

func waitClosed(t *testing.T, closed <-chan struct{}) {
	t.Helper()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Error("agent connection still open")
	}
}

func testTarget(addr string) Target {
	host, port, _ := net.SplitHostPort(addr)
	return Target{User: "testuser", Host: host, Port: port, Path: "/tmp/notes.txt"}
}

// ---------------------------------------------------------------------------
// Dial
// ---------------------------------------------------------------------------

func TestDial(t *testing.T) {
	dir := t.TempDir()
	keyPath, clientPub := writeClientKey(t, dir)
	addr, hostKey := testSSHServer(t, clientPub)

	opts := Options{
		KnownHostsFile: writeKnownHosts(t, dir, addr, hostKey),
		IdentityFiles:  []string{keyPath},
		Timeout:        5 * time.Second,
	}
	c, err := Dial(testTarget(addr), config.SSHConfig{}, opts)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if c.Address() != addr {
		t.Errorf("Address() = %q, want %q", c.Address(), addr)
	}
	if c.limit != 30*time.Second {
		t.Errorf("limit = %v, want default 30s", c.limit)
	}
}

func TestDialResolvesAlias(t *testing.T) {
	dir := t.TempDir()
	keyPath, clientPub := writeClientKey(t, dir)
	addr, hostKey := testSSHServer(t, clientPub)
	host, port, _ := net.SplitHostPort(addr)

	sshCfg := config.SSHConfig{Hosts: []config.SSHHost{{
		Alias:        "devbox",
		HostName:     host,
		Port:         port,
		User:         "testuser",
		IdentityFile: keyPath,
	}}}
	opts := Options{
		KnownHostsFile: writeKnownHosts(t, dir, addr, hostKey),
		Timeout:        5 * time.Second,
	}
	c, err := Dial(Target{Host: "devbox", Path: "notes.txt"}, sshCfg, opts)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()
	if c.Address() != addr {
		t.Errorf("Address() = %q, want %q", c.Address(), addr)
	}
}

func TestDialUnknownHostKey(t *testing.T) {
	dir := t.TempDir()
	keyPath, clientPub := writeClientKey(t, dir)
	addr, _ := testSSHServer(t, clientPub)

	// pin a different key for the address
	otherPub, _, _ := ed25519.GenerateKey(rand.Reader)
	other, _ := ssh.NewPublicKey(otherPub)

	opts := Options{
		KnownHostsFile: writeKnownHosts(t, dir, addr, other),
		IdentityFiles:  []string{keyPath},
		Timeout:        5 * time.Second,
	}
	_, err := Dial(testTarget(addr), config.SSHConfig{}, opts)
	if err == nil || !strings.Contains(err.Error(), "key mismatch") {
		t.Errorf("Dial() error = %v, want key mismatch", err)
	}
}

func TestDialWrongKey(t *testing.T) {
	dir := t.TempDir()
	_, clientPub := writeClientKey(t, dir)
	addr, hostKey := testSSHServer(t, clientPub)

	otherDir := t.TempDir()
	otherKey, _ := writeClientKey(t, otherDir)

	opts := Options{
		KnownHostsFile: writeKnownHosts(t, dir, addr, hostKey),
		IdentityFiles:  []string{otherKey},
		Timeout:        5 * time.Second,
	}
	if _, err := Dial(testTarget(addr), config.SSHConfig{}, opts); err == nil {
		t.Error("expected auth failure")
	}
}

func TestDialWithAgentClosesAgentConn(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	closed := testAgent(t, priv)
	addr, hostKey := testSSHServer(t, sshPub)

	opts := Options{
		KnownHostsFile: writeKnownHosts(t, t.TempDir(), addr, hostKey),
		UseAgent:       true,
		Timeout:        5 * time.Second,
	}
	c, err := Dial(testTarget(addr), config.SSHConfig{}, opts)
	if err != nil {
		t.Fatalf("Dial() with agent error = %v", err)
	}
	if c.agent == nil {
		t.Fatal("client should keep the agent connection")
	}
	_ = c.Close()
	waitClosed(t, closed)
}

func TestDialFailureClosesAgentConn(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	closed := testAgent(t, priv)
	_, otherPub := writeClientKey(t, t.TempDir())
	addr, hostKey := testSSHServer(t, otherPub)

	opts := Options{
		KnownHostsFile: writeKnownHosts(t, t.TempDir(), addr, hostKey),
		UseAgent:       true,
		Timeout:        5 * time.Second,
	}
	if _, err := Dial(testTarget(addr), config.SSHConfig{}, opts); err == nil {
		t.Fatal("Dial() should fail when the agent key is not accepted")
	}
	waitClosed(t, closed)
}

func TestDialMissingKnownHosts(t *testing.T) {
	opts := Options{KnownHostsFile: filepath.Join(t.TempDir(), "missing")}
	_, err := Dial(Target{Host: "127.0.0.1", Port: "1", Path: "/x"}, config.SSHConfig{}, opts)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Dial() error = %v, want ErrNotExist", err)
	}
}

// ---------------------------------------------------------------------------
// authMethods
// ---------------------------------------------------------------------------

func TestAuthMethodsSkipsUnreadableKeys(t *testing.T) {
	dir := t.TempDir()
	keyPath, _ := writeClientKey(t, dir)
	junk := filepath.Join(dir, "junk")
	if err := os.WriteFile(junk, []byte("not a key"), 0o600); err != nil {
		t.Fatal(err)
	}

	opts := Options{IdentityFiles: []string{filepath.Join(dir, "missing"), junk, keyPath}}
	if got, _ := authMethods(keyPath, opts); len(got) != 1 {
		t.Errorf("authMethods() returned %d methods, want 1", len(got))
	}
}

func TestAuthMethodsAgentWithoutSocket(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	got, conn := authMethods("", Options{UseAgent: true})
	if len(got) != 0 || conn != nil {
		t.Errorf("authMethods() returned %d methods and conn %v, want none", len(got), conn)
	}
	if _, _, err := AgentAuth(); err == nil {
		t.Error("AgentAuth() should fail without SSH_AUTH_SOCK")
	}
}

func TestPubKeyAuthErrors(t *testing.T) {
	if _, err := PubKeyAuth(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing key")
	}
}

// ---------------------------------------------------------------------------
// limitWriter
// ---------------------------------------------------------------------------

func TestLimitWriter(t *testing.T) {
	w := &limitWriter{max: 5}
	if n, err := w.Write([]byte("abc")); n != 3 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if _, err := w.Write([]byte("de")); err != nil {
		t.Fatalf("Write at limit error = %v", err)
	}
	if _, err := w.Write([]byte("f")); !errors.Is(err, document.ErrTooLarge) {
		t.Errorf("Write past limit error = %v, want ErrTooLarge", err)
	}
	if !w.exceeded {
		t.Error("exceeded should be set")
	}
	if got := w.buf.String(); got != "abcde" {
		t.Errorf("buffer = %q, want %q", got, "abcde")
	}
}
