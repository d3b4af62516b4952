package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SSHHost is one Host block from ~/.ssh/config.
type SSHHost struct {
	Alias        string
	HostName     string
	Port         string
	User         string
	IdentityFile string // ~ expanded
}

// Address returns the host to dial: HostName when set, otherwise Alias.
func (h SSHHost) Address() string {
	if h.HostName != "" {
		return h.HostName
	}
	return h.Alias
}

// SSHConfig is the parsed set of non-wildcard hosts.
type SSHConfig struct {
	Hosts []SSHHost
}

// Lookup returns the host block whose alias matches name.
func (c SSHConfig) Lookup(name string) (SSHHost, bool) {
	for _, h := range c.Hosts {
		if strings.EqualFold(h.Alias, name) {
			return h, true
		}
	}
	return SSHHost{}, false
}

// SSHConfigPath returns ~/.ssh/config.
func SSHConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ssh", "config")
}

// LoadSSHConfig parses ~/.ssh/config. A missing or unreadable file is not an
// error; it simply yields no hosts.
func LoadSSHConfig() SSHConfig {
	f, err := os.Open(SSHConfigPath())
	if err != nil {
		return SSHConfig{}
	}
	defer func() { _ = f.Close() }()
	return ParseSSHConfig(f)
}

// ParseSSHConfig reads Host blocks from r. A "Host a b" line yields one
// entry per alias; wildcard patterns are skipped.
func ParseSSHConfig(r io.Reader) SSHConfig {
	home, _ := os.UserHomeDir()
	var cfg SSHConfig
	var block []int // indexes into cfg.Hosts for the current Host line

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value := splitDirective(line)
		if strings.EqualFold(key, "host") {
			block = block[:0]
			for _, alias := range strings.Fields(value) {
				if strings.ContainsAny(alias, "*?!") {
					continue
				}
				cfg.Hosts = append(cfg.Hosts, SSHHost{Alias: alias})
				block = append(block, len(cfg.Hosts)-1)
			}
			continue
		}
		for _, i := range block {
			h := &cfg.Hosts[i]
			switch strings.ToLower(key) {
			case "hostname":
				h.HostName = value
			case "port":
				h.Port = value
			case "user":
				h.User = value
			case "identityfile":
				if h.IdentityFile == "" {
					h.IdentityFile = expandTilde(value, home)
				}
			}
		}
	}
	return cfg
}

// splitDirective splits "Key Value" or "Key=Value".
func splitDirective(line string) (string, string) {
	i := strings.IndexAny(line, " \t=")
	if i < 0 {
		return line, ""
	}
	key := line[:i]
	value := strings.TrimLeft(line[i:], " \t")
	value = strings.TrimPrefix(value, "=")
	value = strings.Trim(strings.TrimSpace(value), `"`)
	return key, value
}

func expandTilde(path, home string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	}
	return path
}
