package config

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Defaults used when the corresponding flag is not given.
const (
	DefaultUpstreamURL     = "https://api.mainnet-beta.solana.com"
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultLogLevel        = "info"
)

// Config is the startup configuration of the proxy. It is built once in main
// and handed to the components that need it; nothing modifies it afterwards.
type Config struct {
	// Listener
	Address net.IP
	Port    uint16

	// Upstream node
	UpstreamURL     string
	UpstreamTimeout time.Duration

	LogLevel string
}

// Params holds the raw values read from the command line.
type Params struct {
	Address         string
	Port            uint
	UpstreamURL     string
	UpstreamTimeout time.Duration
	LogLevel        string
}

// New parses and validates p. All problems are reported together.
func New(p Params) (*Config, error) {
	cfg := &Config{
		UpstreamURL:     p.UpstreamURL,
		UpstreamTimeout: p.UpstreamTimeout,
		LogLevel:        p.LogLevel,
	}
	var errs []error

	addr, err := ParseAddress(p.Address)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Address = addr

	port, err := ParsePort(p.Port)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Port = port

	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = DefaultUpstreamURL
	}
	if cfg.UpstreamTimeout == 0 {
		cfg.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAddress parses the bind address, which must be a literal IPv4 or IPv6 address.
func ParseAddress(s string) (net.IP, error) {
	if s == "" {
		return nil, fmt.Errorf("address is required")
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid address %q: must be an IP address", s)
	}
	return ip, nil
}

// ParsePort checks that p fits in a TCP port number.
func ParsePort(p uint) (uint16, error) {
	if p > math.MaxUint16 {
		return 0, fmt.Errorf("invalid port %d: must be between 0 and %d", p, math.MaxUint16)
	}
	return uint16(p), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Address == nil {
		errs = append(errs, fmt.Errorf("Address is required"))
	}

	if c.UpstreamURL == "" {
		errs = append(errs, fmt.Errorf("UpstreamURL is required"))
	} else if u, err := url.Parse(c.UpstreamURL); err != nil {
		errs = append(errs, fmt.Errorf("UpstreamURL %q: %w", c.UpstreamURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("UpstreamURL %q: scheme must be http or https", c.UpstreamURL))
	} else if u.Host == "" {
		errs = append(errs, fmt.Errorf("UpstreamURL %q: host is required", c.UpstreamURL))
	}

	if c.UpstreamTimeout < 0 {
		errs = append(errs, fmt.Errorf("UpstreamTimeout cannot be negative"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LogLevel %q: must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// ListenAddr returns the host:port string the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address.String(), strconv.Itoa(int(c.Port)))
}
