package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/internal/shell"
	"golang.org/x/crypto/ssh"
)

const (
	// LocalURL is the default host URL.
	LocalURL = "bash://localhost/"
	// DefaultProbe checks that the interpreter runtime is installed.
	DefaultProbe = "node --version"
)

// Config represents browser host configuration
type Config struct {
	// URL selects the host: bash://localhost/ or ssh://host[:port].
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Credentials names the scy secret holding ssh credentials.
	Credentials string            `yaml:"credentials,omitempty" json:"credentials,omitempty"`
	Workdir     string            `yaml:"workdir,omitempty" json:"workdir,omitempty"`
	Env         map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	// Probe must exit with status 0 for the launch to succeed.
	Probe string `yaml:"probe,omitempty" json:"probe,omitempty"`
	// Start and Stop optionally bring the browser up and down.
	Start     string `yaml:"start,omitempty" json:"start,omitempty"`
	Stop      string `yaml:"stop,omitempty" json:"stop,omitempty"`
	TimeoutMs int    `yaml:"timeoutMs,omitempty" json:"timeoutMs,omitempty"`
}

// DefaultConfig returns the default host configuration
func DefaultConfig() Config {
	return Config{URL: LocalURL, Probe: DefaultProbe, TimeoutMs: 60000}
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	if c.URL == "" {
		c.URL = LocalURL
	}
	if c.Probe == "" {
		c.Probe = DefaultProbe
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = DefaultConfig().TimeoutMs
	}
}

// IsLocal reports whether commands run on this machine.
func (c *Config) IsLocal() bool {
	return url.Host(c.URL) == "localhost"
}

// Timeout returns the per command timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Host is a Browser backed by gosh shell sessions.
type Host struct {
	config    Config
	sshConfig *ssh.ClientConfig
	log       logx.Logger
	mux       sync.RWMutex
	closed    bool
}

// Execute runs command in a new shell session.
func (h *Host) Execute(ctx context.Context, command string, timeout time.Duration) (string, int, error) {
	h.mux.RLock()
	closed := h.closed
	h.mux.RUnlock()
	if closed {
		return "", 0, fmt.Errorf("%w: host %v closed", ErrUnavailable, h.config.URL)
	}
	if timeout <= 0 {
		timeout = h.config.Timeout()
	}
	service, err := h.newSession(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to open session on %v: %v", ErrUnavailable, h.config.URL, err)
	}
	defer func() { _ = service.Close() }()

	command = shell.InDir(h.config.Workdir, command)
	started := time.Now()
	stdout, status, err := service.Run(ctx, command, runner.WithTimeout(int(timeout.Milliseconds())))
	elapsed := time.Since(started)
	if err == nil && elapsed >= timeout {
		err = fmt.Errorf("%w: %v after %s", ErrTimeout, command, elapsed.Round(time.Millisecond))
	}
	h.log.Debug("command executed", logx.String("command", command), logx.Int("status", status), logx.Duration("elapsed", elapsed), logx.Err(err))
	return stdout, status, err
}

// Close runs the stop command, if any, and rejects further commands.
func (h *Host) Close(ctx context.Context) error {
	if h.config.Stop == "" {
		h.markClosed()
		return nil
	}
	output, status, err := h.Execute(ctx, h.config.Stop, 0)
	h.markClosed()
	if err != nil {
		return err
	}
	if status != 0 {
		return fmt.Errorf("stop command exited with %d: %s", status, strings.TrimSpace(output))
	}
	return nil
}

func (h *Host) markClosed() {
	h.mux.Lock()
	h.closed = true
	h.mux.Unlock()
}

func (h *Host) newSession(ctx context.Context) (*gosh.Service, error) {
	var envOptions []runner.Option
	if len(h.config.Env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(h.config.Env))
	}
	if h.config.IsLocal() {
		return gosh.New(ctx, local.New(envOptions...))
	}
	sshHost := url.Host(h.config.URL)
	if !strings.Contains(sshHost, ":") {
		sshHost += ":22"
	}
	return gosh.New(ctx, rssh.New(sshHost, h.sshConfig, envOptions...))
}

// HostLauncher launches Host browsers.
type HostLauncher struct {
	config Config
	log    logx.Logger
}

// Launch resolves ssh credentials for remote hosts, runs the start command
// and probes the host.
func (l *HostLauncher) Launch(ctx context.Context) (Browser, error) {
	host := &Host{config: l.config, log: l.log}
	if !l.config.IsLocal() {
		sshConfig, err := sshClientConfig(ctx, l.config.Credentials)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to get SSH config: %v", ErrUnavailable, err)
		}
		host.sshConfig = sshConfig
	}
	if l.config.Start != "" {
		if err := l.run(ctx, host, l.config.Start); err != nil {
			return nil, err
		}
	}
	if err := l.run(ctx, host, l.config.Probe); err != nil {
		return nil, err
	}
	l.log.Debug("browser launched", logx.String("host", l.config.URL))
	return host, nil
}

func (l *HostLauncher) run(ctx context.Context, host *Host, command string) error {
	output, status, err := host.Execute(ctx, command, 0)
	if err != nil {
		return fmt.Errorf("%w: %v: %v", ErrUnavailable, command, err)
	}
	if status != 0 {
		return fmt.Errorf("%w: %v exited with %d: %s", ErrUnavailable, command, status, strings.TrimSpace(output))
	}
	return nil
}

func sshClientConfig(ctx context.Context, credentials string) (*ssh.ClientConfig, error) {
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// NewLauncher creates a host launcher
func NewLauncher(config Config, logger logx.Logger) *HostLauncher {
	config.Init()
	return &HostLauncher{config: config, log: logger}
}
