package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidConfig(t *testing.T) {
	cfg, err := New(Params{Address: "127.0.0.1", Port: 8080})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Address.String())
	assert.Equal(t, uint16(8080), cfg.Port)
	assert.Equal(t, DefaultUpstreamURL, cfg.UpstreamURL)         // Default
	assert.Equal(t, DefaultUpstreamTimeout, cfg.UpstreamTimeout) // Default
	assert.Equal(t, "info", cfg.LogLevel)                        // Default
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
}

func TestNew_CustomValues(t *testing.T) {
	cfg, err := New(Params{
		Address:         "::1",
		Port:            9090,
		UpstreamURL:     "http://localhost:8899",
		UpstreamTimeout: 5 * time.Second,
		LogLevel:        "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.UpstreamURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "[::1]:9090", cfg.ListenAddr())
}

func TestNew_InvalidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{name: "empty", address: "", want: "address is required"},
		{name: "hostname", address: "localhost", want: "must be an IP address"},
		{name: "with port", address: "127.0.0.1:80", want: "must be an IP address"},
		{name: "garbage", address: "999.1.1.1", want: "must be an IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(Params{Address: tt.address, Port: 8080})
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_PortOutOfRange(t *testing.T) {
	cfg, err := New(Params{Address: "0.0.0.0", Port: 70000})
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid port 70000")
}

func TestNew_ReportsAllErrors(t *testing.T) {
	_, err := New(Params{Address: "nope", Port: 65536})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
	assert.Contains(t, err.Error(), "invalid port")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := New(Params{Address: "127.0.0.1", Port: 8080})
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "missing scheme", mutate: func(c *Config) { c.UpstreamURL = "api.mainnet-beta.solana.com" }, want: "scheme must be http or https"},
		{name: "websocket scheme", mutate: func(c *Config) { c.UpstreamURL = "wss://api.mainnet-beta.solana.com" }, want: "scheme must be http or https"},
		{name: "no host", mutate: func(c *Config) { c.UpstreamURL = "https://" }, want: "host is required"},
		{name: "negative timeout", mutate: func(c *Config) { c.UpstreamTimeout = -time.Second }, want: "cannot be negative"},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, want: "LogLevel"},
		{name: "nil address", mutate: func(c *Config) { c.Address = nil }, want: "Address is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestParsePort(t *testing.T) {
	port, err := ParsePort(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), port)

	port, err = ParsePort(65535)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), port)

	_, err = ParsePort(65536)
	assert.Error(t, err)
}
