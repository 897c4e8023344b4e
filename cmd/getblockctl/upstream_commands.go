package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brojonat/getblock-proxy/service/solana"
	"github.com/urfave/cli/v2"
)

func upstreamCommand() *cli.Command {
	return &cli.Command{
		Name:  "upstream",
		Usage: "Show health and finalized slot of the upstream node",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 10 * time.Second,
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
			node := solana.NewNodeClient(c.String("upstream-url"), logger)
			return printNodeStatus(ctx, c.App.Writer, node, c.String("upstream-url"), c.Bool("json"))
		},
	}
}

func printNodeStatus(ctx context.Context, w io.Writer, node *solana.NodeClient, url string, asJSON bool) error {
	status, err := node.Status(ctx)
	if err != nil {
		return fmt.Errorf("upstream %s: %w", url, err)
	}

	if asJSON {
		return json.NewEncoder(w).Encode(status)
	}

	fmt.Fprintf(w, "Upstream: %s\n", url)
	fmt.Fprintf(w, "  Health:          %s\n", status.Health)
	fmt.Fprintf(w, "  Finalized slot:  %d\n", status.Slot)
	fmt.Fprintf(w, "  Latency:         %s\n", status.Latency.Round(time.Millisecond))
	return nil
}

func requestCommand() *cli.Command {
	return &cli.Command{
		Name:      "request",
		Usage:     "Print a getBlock request body",
		Flags: []cli.Flag{
			slotFlag(),
			&cli.Uint64Flag{
				Name:  "id",
				Usage: "JSON-RPC request id",
				Value: 1,
			},
		},
		Action: func(c *cli.Context) error {
			slot := c.Uint64("slot")
			return json.NewEncoder(c.App.Writer).Encode(solana.NewGetBlockRequest(c.Uint64("id"), slot))
		},
	}
}

func slotFlag() *cli.Uint64Flag {
	return &cli.Uint64Flag{
		Name:     "slot",
		Aliases:  []string{"s"},
		Usage:    "Slot to request",
		Required: true,
	}
}
