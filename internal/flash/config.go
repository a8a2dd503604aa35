package flash

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

// Config describes the external conversion-and-flash pipeline.
type Config struct {
	Command     []string      // argv of the pipeline, run in WorkDir
	WorkDir     string        // working directory for the command and message files
	Timeout     time.Duration // 0 = no limit
	Template    string        // message template, relative to WorkDir; optional
	Output      string        // staged message file, relative to WorkDir
	Placeholder string        // token in Template replaced by the message
	Remote      RemoteConfig
}

// RemoteConfig runs the pipeline on another host over SSH. Host empty means
// the pipeline runs locally.
type RemoteConfig struct {
	Host     string
	Port     int
	User     string
	KeyPath  string
	Password string
	Command  string // shell command; the staged message arrives on stdin
}

// DefaultConfig returns the stock badge pipeline: clear the
// display's EEPROM, convert text.txt and flash it.
func DefaultConfig() Config {
	return Config{
		Command:     []string{"make", "clear_eeprom", "textconvert", "eeflash"},
		WorkDir:     ".",
		Template:    "text.orig",
		Output:      "text.txt",
		Placeholder: "VORNAME",
		Remote: RemoteConfig{
			Port: 22,
		},
	}
}

var validHostname = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// Validate checks the config for missing or dangerous values.
func (c *Config) Validate() error {
	if len(c.Command) == 0 || strings.TrimSpace(c.Command[0]) == "" {
		return fmt.Errorf("pipeline command is required")
	}
	if c.Output == "" {
		return fmt.Errorf("pipeline output file is required")
	}
	if c.Template != "" && c.Placeholder == "" {
		return fmt.Errorf("pipeline placeholder is required when a template is set")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("pipeline timeout must not be negative, got %s", c.Timeout)
	}
	if c.Remote.Host != "" {
		return c.Remote.validate()
	}
	return nil
}

func (r *RemoteConfig) validate() error {
	if net.ParseIP(r.Host) == nil && !validHostname.MatchString(r.Host) {
		return fmt.Errorf("invalid ssh host: %q", r.Host)
	}
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("ssh port must be between 1 and 65535, got %d", r.Port)
	}
	if r.User == "" {
		return fmt.Errorf("ssh user is required")
	}
	if r.KeyPath == "" && r.Password == "" {
		return fmt.Errorf("ssh key or password is required")
	}
	return nil
}

// CommandLine returns the pipeline argv as one printable string.
func (c *Config) CommandLine() string {
	parts := make([]string, len(c.Command))
	for i, a := range c.Command {
		parts[i] = shellQuote(a)
	}
	return strings.Join(parts, " ")
}

// RemoteCommand returns the shell command run on the remote host. Unless
// configured explicitly it stores stdin as the output file and then runs
// the pipeline.
func (c *Config) RemoteCommand() string {
	if c.Remote.Command != "" {
		return c.Remote.Command
	}
	return fmt.Sprintf("cat > %s && %s", shellQuote(c.Output), c.CommandLine())
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
