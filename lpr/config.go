package lpr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode"

	"github.com/arloliu/go-laser/logger"
)

// Default connection values.
const (
	DefaultPort           = 515 // "printer" service
	DefaultConnectTimeout = 60 * time.Second
	DefaultRetryInterval  = 1 * time.Second
	DefaultKeepAlive      = 30 * time.Second
)

// Resolver looks up the addresses of a host. *net.Resolver implements it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Dialer opens stream connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// SessionConfig holds all configuration for an LPD job session.
type SessionConfig struct {
	host string
	port int

	job Job

	// connectTimeout bounds the whole resolve+connect phase.
	connectTimeout time.Duration
	// connectAttempts is the number of resolution passes; 0 derives it
	// from connectTimeout / retryInterval.
	connectAttempts int
	retryInterval   time.Duration

	// localHost is the short host name sent in the control file; empty
	// means os.Hostname() at connect time.
	localHost string

	resolver Resolver
	dialer   Dialer
	logger   logger.Logger
}

// NewSessionConfig creates a new session configuration for the device at host.
//
// opts are functional options applied in order; see With* functions.
func NewSessionConfig(host string, opts ...ConnOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		port:           DefaultPort,
		job:            DefaultJob(),
		connectTimeout: DefaultConnectTimeout,
		retryInterval:  DefaultRetryInterval,
		resolver:       net.DefaultResolver,
		dialer:         &net.Dialer{KeepAlive: DefaultKeepAlive},
		logger:         logger.GetLogger(),
	}

	if err := cfg.setHost(host); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *SessionConfig) setHost(host string) error {
	host = strings.TrimSpace(host)
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return errors.New("lpr: host must not be empty")
	}
	cfg.host = host

	return nil
}

// --- Getters ---

// Host returns the device host name or address.
func (cfg *SessionConfig) Host() string { return cfg.host }

// Port returns the device TCP port.
func (cfg *SessionConfig) Port() int { return cfg.port }

// Job returns a copy of the job description.
func (cfg *SessionConfig) Job() Job { return cfg.job }

// ConnectTimeout returns the watchdog deadline of the connect phase.
func (cfg *SessionConfig) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// RetryInterval returns the pause between two resolution passes.
func (cfg *SessionConfig) RetryInterval() time.Duration { return cfg.retryInterval }

// ConnectAttempts returns the number of resolution passes made by Dial.
//
// Unless set explicitly it is one attempt per retry interval within the
// connect timeout, and at least one.
func (cfg *SessionConfig) ConnectAttempts() int {
	if cfg.connectAttempts > 0 {
		return cfg.connectAttempts
	}

	n := int(cfg.connectTimeout / cfg.retryInterval)
	if n < 1 {
		n = 1
	}

	return n
}

// LocalHostname returns the configured local host name, empty if it is taken
// from the operating system.
func (cfg *SessionConfig) LocalHostname() string { return cfg.localHost }

// GetLogger returns the configured logger.
func (cfg *SessionConfig) GetLogger() logger.Logger { return cfg.logger }

// --- ConnOption ---

// ConnOption is a functional option for configuring a SessionConfig.
type ConnOption interface {
	apply(*SessionConfig) error
}

type connOptFunc func(*SessionConfig) error

func (f connOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithPort sets the device TCP port. Defaults to 515.
func WithPort(port int) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("lpr: port %d out of range [1, 65535]", port)
		}
		cfg.port = port

		return nil
	})
}

// WithJob replaces the whole job description.
func WithJob(job Job) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if err := validateJobName(job.Name); err != nil {
			return err
		}
		if err := validateQueue(job.Queue); err != nil {
			return err
		}
		if err := validateTitle(job.Title); err != nil {
			return err
		}
		cfg.job = job

		return nil
	})
}

// WithTitle sets the PJL job title.
func WithTitle(title string) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if err := validateTitle(title); err != nil {
			return err
		}
		cfg.job.Title = title

		return nil
	})
}

// WithQueue sets the LPD queue name. The empty queue selects the device default.
func WithQueue(queue string) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if err := validateQueue(queue); err != nil {
			return err
		}
		cfg.job.Queue = queue

		return nil
	})
}

// WithUser sets the submitting user name.
func WithUser(user string) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		cfg.job.User = user
		return nil
	})
}

// WithJobName sets the logical job file name used in the cfA/dfA file names.
func WithJobName(name string) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if err := validateJobName(name); err != nil {
			return err
		}
		cfg.job.Name = name

		return nil
	})
}

// WithJobSize sets the data file size declared to the device.
//
// The size is announced as given; it is not compared to the bytes actually sent.
func WithJobSize(size uint64) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		cfg.job.Size = size
		return nil
	})
}

// WithResolution sets the device resolution in dots per inch.
func WithResolution(dpi uint32) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if dpi == 0 {
			return errors.New("lpr: resolution must be positive")
		}
		cfg.job.Resolution = dpi

		return nil
	})
}

// WithPageSize sets the page width and height in device units.
func WithPageSize(width, height uint32) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if width == 0 || height == 0 {
			return fmt.Errorf("lpr: invalid page size %dx%d", width, height)
		}
		cfg.job.Width = width
		cfg.job.Height = height

		return nil
	})
}

// WithAutoFocus enables or disables the device autofocus. Disabled by default.
func WithAutoFocus(enabled bool) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		cfg.job.AutoFocus = enabled
		return nil
	})
}

// WithConnectTimeout sets the watchdog deadline of the resolve+connect phase.
func WithConnectTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if d <= 0 {
			return errors.New("lpr: connect timeout must be positive")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithConnectAttempts sets the number of resolution passes explicitly.
func WithConnectAttempts(n int) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if n < 1 {
			return errors.New("lpr: connect attempts must be >= 1")
		}
		cfg.connectAttempts = n

		return nil
	})
}

// WithRetryInterval sets the pause between two resolution passes.
func WithRetryInterval(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if d <= 0 {
			return errors.New("lpr: retry interval must be positive")
		}
		cfg.retryInterval = d

		return nil
	})
}

// WithLocalHostname overrides the local host name sent to the device.
// Any domain suffix is stripped at the first dot.
func WithLocalHostname(name string) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		name = shortHostname(name)
		if name == "" {
			return errors.New("lpr: local host name must not be empty")
		}
		cfg.localHost = name

		return nil
	})
}

// WithResolver sets the resolver used to look up the device host.
func WithResolver(r Resolver) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if r == nil {
			return errors.New("lpr: resolver must not be nil")
		}
		cfg.resolver = r

		return nil
	})
}

// WithDialer sets the dialer used to connect to the device.
func WithDialer(d Dialer) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if d == nil {
			return errors.New("lpr: dialer must not be nil")
		}
		cfg.dialer = d

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) ConnOption {
	return connOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("lpr: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

func validateJobName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("lpr: invalid job name %q", name)
	}

	return nil
}

// validateQueue rejects queue names that would end the queue frame early.
func validateQueue(queue string) error {
	if strings.IndexFunc(queue, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return fmt.Errorf("lpr: invalid queue name %q", queue)
	}

	return nil
}

// validateTitle rejects titles that would end the PJL JOB line early.
func validateTitle(title string) error {
	if strings.ContainsAny(title, "\r\n") {
		return errors.New("lpr: title must not contain line breaks")
	}

	return nil
}

// shortHostname strips the domain part of a host name.
func shortHostname(name string) string {
	name, _, _ = strings.Cut(strings.TrimSpace(name), ".")
	return name
}
