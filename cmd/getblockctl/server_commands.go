package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brojonat/getblock-proxy/client"
	"github.com/brojonat/getblock-proxy/service/solana"
	"github.com/urfave/cli/v2"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check proxy health",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 5 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			serverURL := c.String("server-url")
			if serverURL == "" {
				return fmt.Errorf("server-url is required (set GETBLOCK_SERVER_URL env var or use --server-url)")
			}

			cl := client.NewClient(serverURL, &http.Client{Timeout: c.Duration("timeout")}, nil)
			body, err := cl.Health(c.Context)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "✓ Server is healthy (%s)\n", body)
			fmt.Fprintf(c.App.Writer, "  URL: %s\n", serverURL)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a filtered block through the proxy",
		Flags: []cli.Flag{
			slotFlag(),
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 60 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print only block header and transaction count",
			},
		},
		Action: func(c *cli.Context) error {
			slot := c.Uint64("slot")

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError, // Only errors to stderr
			}))
			cl := client.NewClient(c.String("server-url"), &http.Client{Timeout: c.Duration("timeout")}, logger)

			block, err := cl.GetBlock(c.Context, solana.NewGetBlockRequest(1, slot))
			if err != nil {
				return fmt.Errorf("failed to get block %d: %w", slot, err)
			}

			if c.Bool("summary") {
				fmt.Fprintf(c.App.Writer, "slot:         %d\n", slot)
				fmt.Fprintf(c.App.Writer, "blockhash:    %s\n", unquote(block.Result.Blockhash))
				fmt.Fprintf(c.App.Writer, "parent slot:  %s\n", unquote(block.Result.ParentSlot))
				fmt.Fprintf(c.App.Writer, "transactions: %d\n", len(block.Result.Transactions))
				return nil
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(block)
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "getblockctl\n")
			fmt.Fprintf(c.App.Writer, "  Version: %s\n", version)
			fmt.Fprintf(c.App.Writer, "  Commit:  %s\n", commit)
			fmt.Fprintf(c.App.Writer, "  Built:   %s\n", date)
			return nil
		},
	}
}

// unquote renders a raw header value for display. Strings lose their quotes;
// anything else, including null, is printed as sent.
func unquote(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "null"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
