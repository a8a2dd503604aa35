package ssh

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Client wraps an SSH connection to the host driving the display programmer.
type Client struct {
	conn *ssh.Client
	host string
	user string
}

// ConnectConfig holds SSH connection parameters.
type ConnectConfig struct {
	Host     string
	Port     int
	User     string
	KeyPath  string // path to private key file
	Password string // fallback if KeyPath is empty
	Timeout  time.Duration
}

// Connect establishes an SSH connection using key auth (preferred) or password.
func Connect(cfg ConnectConfig) (*Client, error) {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	authMethods, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := knownHostsCallback()
	if err != nil {
		// Fall back to insecure if known_hosts isn't available.
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.Timeout,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("SSH connect to %s: %w", addr, err)
	}

	return &Client{conn: conn, host: cfg.Host, user: cfg.User}, nil
}

func authMethods(cfg ConnectConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		key, err := os.ReadFile(expandHome(cfg.KeyPath))
		if err != nil {
			return nil, fmt.Errorf("read SSH key %q: %w", cfg.KeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse SSH key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH auth method provided (key or password required)")
	}
	return methods, nil
}

// Host returns user@host.
func (c *Client) Host() string {
	return c.user + "@" + c.host
}

// RunCommand executes a command on the remote host and returns its output.
func (c *Client) RunCommand(cmd string) (string, error) {
	return c.RunWithInput(cmd, nil)
}

// RunWithInput executes cmd with stdin fed from in and returns the combined
// output.
func (c *Client) RunWithInput(cmd string, in io.Reader) (string, error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("create SSH session: %w", err)
	}
	defer session.Close()

	if in != nil {
		session.Stdin = in
	}

	out, err := session.CombinedOutput(cmd)
	if err != nil {
		return string(out), fmt.Errorf("remote command %q: %w", cmd, err)
	}
	return string(out), nil
}

// CheckCommand reports whether name resolves on the remote PATH.
func (c *Client) CheckCommand(name string) error {
	if _, err := c.RunCommand(commandCheck(name)); err != nil {
		return fmt.Errorf("%s not found on %s", name, c.host)
	}
	return nil
}

// commandCheck builds the POSIX lookup for name, single-quoted so the
// remote shell sees it as one word.
func commandCheck(name string) string {
	return "command -v '" + strings.ReplaceAll(name, "'", `'\''`) + "'"
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ExitStatus extracts the remote exit status from an error returned by
// RunWithInput.
func ExitStatus(err error) (int, bool) {
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), true
	}
	return 0, false
}

func knownHostsCallback() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return knownhosts.New(path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
