package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp() *cli.App {
	app := newApp()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func TestApp_RequiresAddressAndPort(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no flags", args: []string{"getblock-proxy"}, want: "address"},
		{name: "missing port", args: []string{"getblock-proxy", "--address", "127.0.0.1"}, want: "port"},
		{name: "missing address", args: []string{"getblock-proxy", "-p", "8080"}, want: "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testApp().Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApp_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "hostname address", args: []string{"getblock-proxy", "-a", "localhost", "-p", "8080"}, want: "invalid address"},
		{name: "port out of range", args: []string{"getblock-proxy", "-a", "127.0.0.1", "-p", "99999"}, want: "invalid port"},
		{name: "bad upstream", args: []string{"getblock-proxy", "-a", "127.0.0.1", "-p", "8080", "--upstream-url", "ftp://node"}, want: "scheme must be http or https"},
		{name: "non-numeric port", args: []string{"getblock-proxy", "-a", "127.0.0.1", "--port", "http"}, want: "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testApp().Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	logger := setupLogger("debug")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = setupLogger("warn")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger = setupLogger("unknown")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
