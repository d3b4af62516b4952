package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"notepad/internal/config"
	"notepad/internal/document"

	"github.com/bramvdbogaerde/go-scp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Options controls how Dial authenticates and verifies hosts.
type Options struct {
	KnownHostsFile string   // defaults to ~/.ssh/known_hosts
	IdentityFiles  []string // tried after the ssh_config IdentityFile
	UseAgent       bool
	Timeout        time.Duration // dial timeout, default 10s
	TransferLimit  time.Duration // per-file copy timeout, default 30s
}

// DefaultOptions uses the SSH agent, the standard key files and
// ~/.ssh/known_hosts.
func DefaultOptions() Options {
	home, _ := os.UserHomeDir()
	sshDir := filepath.Join(home, ".ssh")
	return Options{
		KnownHostsFile: filepath.Join(sshDir, "known_hosts"),
		IdentityFiles: []string{
			filepath.Join(sshDir, "id_ed25519"),
			filepath.Join(sshDir, "id_ecdsa"),
			filepath.Join(sshDir, "id_rsa"),
		},
		UseAgent: true,
	}
}

// Client is an SSH connection used to read and write whole files.
type Client struct {
	client  *ssh.Client
	agent   io.Closer // connection to the SSH agent, nil when unused
	address string
	limit   time.Duration
}

// Dial connects to t's host. Host aliases are resolved through sshCfg.
func Dial(t Target, sshCfg config.SSHConfig, opts Options) (*Client, error) {
	host, port, user, identity := t.Host, t.Port, t.User, ""
	if h, ok := sshCfg.Lookup(t.Host); ok {
		host = h.Address()
		if port == "" {
			port = h.Port
		}
		if user == "" {
			user = h.User
		}
		identity = h.IdentityFile
	}
	if port == "" {
		port = "22"
	}
	if user == "" {
		user = os.Getenv("USER")
	}

	hkCallback, err := knownhosts.New(opts.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("load known hosts %s: %w", opts.KnownHostsFile, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	methods, agentConn := authMethods(identity, opts)
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            methods,
		HostKeyCallback: hkCallback,
		Timeout:         timeout,
	}
	address := net.JoinHostPort(host, port)
	log.Printf("[remote] dialling %s@%s", user, address)
	client, err := ssh.Dial("tcp", address, cfg)
	if err != nil {
		if agentConn != nil {
			_ = agentConn.Close()
		}
		return nil, fmt.Errorf("connect %s: %w", address, err)
	}

	limit := opts.TransferLimit
	if limit == 0 {
		limit = 30 * time.Second
	}
	return &Client{client: client, agent: agentConn, address: address, limit: limit}, nil
}

// authMethods returns key files first, then the agent. Unreadable keys are
// skipped. The returned closer is the agent connection, or nil.
func authMethods(identity string, opts Options) ([]ssh.AuthMethod, io.Closer) {
	var methods []ssh.AuthMethod
	seen := map[string]bool{}
	for _, kp := range append([]string{identity}, opts.IdentityFiles...) {
		if kp == "" || seen[kp] {
			continue
		}
		seen[kp] = true
		if am, err := PubKeyAuth(kp); err == nil {
			methods = append(methods, am)
		}
	}
	var agentConn io.Closer
	if opts.UseAgent {
		if am, conn, err := AgentAuth(); err == nil {
			methods = append(methods, am)
			agentConn = conn
		}
	}
	return methods, agentConn
}

// PubKeyAuth returns an AuthMethod for the private key in keyPath.
func PubKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

// AgentAuth returns an AuthMethod backed by the agent on SSH_AUTH_SOCK and
// the agent connection, which the caller must close once authentication is
// no longer needed.
func AgentAuth() (ssh.AuthMethod, io.Closer, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, errors.New("SSH_AUTH_SOCK not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, err
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), conn, nil
}

// Address returns host:port of the connection.
func (c *Client) Address() string {
	return c.address
}

// Close closes the SSH connection and the agent connection.
func (c *Client) Close() error {
	err := c.client.Close()
	if c.agent != nil {
		err = errors.Join(err, c.agent.Close())
	}
	return err
}

// ReadFile copies a remote file into memory. Files larger than
// document.MaxFileSize are refused.
func (c *Client) ReadFile(path string) ([]byte, error) {
	scpClient, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return nil, err
	}
	defer scpClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.limit)
	defer cancel()

	w := &limitWriter{max: document.MaxFileSize}
	if err := scpClient.CopyFromRemotePassThru(ctx, w, path, nil); err != nil {
		if w.exceeded {
			return nil, fmt.Errorf("%s: %w", path, document.ErrTooLarge)
		}
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// WriteFile copies data to a remote file with mode 0644.
func (c *Client) WriteFile(path string, data []byte) error {
	scpClient, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return err
	}
	defer scpClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.limit)
	defer cancel()
	return scpClient.CopyFile(ctx, bytes.NewReader(data), path, "0644")
}

// limitWriter buffers up to max bytes and fails after that.
type limitWriter struct {
	buf      bytes.Buffer
	max      int64
	exceeded bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if int64(w.buf.Len()+len(p)) > w.max {
		w.exceeded = true
		return 0, document.ErrTooLarge
	}
	return w.buf.Write(p)
}
