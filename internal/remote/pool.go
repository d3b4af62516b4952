package remote

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"notepad/internal/config"
	"notepad/internal/document"
)

// FileClient is the part of Client a Pool needs.
type FileClient interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Close() error
}

// DialFunc opens a FileClient for a target's host.
type DialFunc func(t Target) (FileClient, error)

// Pool is a document.Store that sends remote paths over SSH and everything
// else to a local store. One connection per host is kept for the session.
type Pool struct {
	local document.Store
	dial  DialFunc

	mu      sync.Mutex
	clients map[string]FileClient
	closed  bool
}

// ErrPoolClosed is returned for remote paths once the pool is closed.
var ErrPoolClosed = errors.New("connection pool closed")

// NewPool returns a pool that dials with sshCfg and opts.
func NewPool(local document.Store, sshCfg config.SSHConfig, opts Options) *Pool {
	return NewPoolWithDialer(local, func(t Target) (FileClient, error) {
		return Dial(t, sshCfg, opts)
	})
}

// NewPoolWithDialer returns a pool using a custom dial function.
func NewPoolWithDialer(local document.Store, dial DialFunc) *Pool {
	return &Pool{
		local:   local,
		dial:    dial,
		clients: map[string]FileClient{},
	}
}

func (p *Pool) clientFor(path string) (FileClient, Target, error) {
	t, err := ParseTarget(path)
	if err != nil {
		return nil, Target{}, err
	}
	key := t.HostKey()
	p.mu.Lock()
	c, ok := p.clients[key]
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, Target{}, ErrPoolClosed
	}
	if ok {
		return c, t, nil
	}

	// Dial without the lock; other hosts stay usable meanwhile.
	c, err = p.dial(t)
	if err != nil {
		return nil, Target{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.closeQuietly(key, c)
		return nil, Target{}, ErrPoolClosed
	}
	if existing, ok := p.clients[key]; ok {
		// Lost a race with another dial to the same host.
		p.closeQuietly(key, c)
		return existing, t, nil
	}
	p.clients[key] = c
	return c, t, nil
}

func (p *Pool) closeQuietly(key string, c FileClient) {
	if err := c.Close(); err != nil {
		log.Printf("[remote] close %s: %v", key, err)
	}
}

// ReadFile implements document.Store.
func (p *Pool) ReadFile(path string) ([]byte, error) {
	if !IsRemote(path) {
		return p.local.ReadFile(path)
	}
	c, t, err := p.clientFor(path)
	if err != nil {
		return nil, err
	}
	data, err := c.ReadFile(t.Path)
	if err != nil {
		p.drop(t)
		return nil, err
	}
	return data, nil
}

// WriteFile implements document.Store.
func (p *Pool) WriteFile(path string, data []byte) error {
	if !IsRemote(path) {
		return p.local.WriteFile(path, data)
	}
	c, t, err := p.clientFor(path)
	if err != nil {
		return err
	}
	if err := c.WriteFile(t.Path, data); err != nil {
		p.drop(t)
		return err
	}
	return nil
}

// drop forgets a connection after a failed transfer so the next attempt
// redials.
func (p *Pool) drop(t Target) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := t.HostKey()
	if c, ok := p.clients[key]; ok {
		p.closeQuietly(key, c)
		delete(p.clients, key)
	}
}

// Close closes every open connection. Later remote reads and writes fail
// with ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	var errs []error
	for key, c := range p.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
		delete(p.clients, key)
	}
	return errors.Join(errs...)
}

// Open reports the number of cached connections.
func (p *Pool) Open() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}
