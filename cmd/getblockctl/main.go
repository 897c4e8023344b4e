package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "getblockctl",
		Usage: "getblock-proxy operator CLI",
		Description: `A command-line tool for probing a running getblock-proxy, inspecting the
upstream Solana node, and running the transfer filter over saved blocks.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			// Running proxy
			healthCommand(),
			getCommand(),
			// Upstream node
			upstreamCommand(),
			requestCommand(),
			// Offline
			filterCommand(),
			versionCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "getblock-proxy URL",
				EnvVars: []string{"GETBLOCK_SERVER_URL"},
				Value:   "http://127.0.0.1:8080",
			},
			&cli.StringFlag{
				Name:    "upstream-url",
				Usage:   "Solana JSON-RPC endpoint",
				EnvVars: []string{"GETBLOCK_UPSTREAM_URL"},
				Value:   "https://api.mainnet-beta.solana.com",
			},
		},
	}
}
