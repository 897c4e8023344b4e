package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brojonat/getblock-proxy/service/solana"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "Filter a saved getBlock response without contacting a node",
		Description: `Reads a getBlock JSON-RPC response from --file (or stdin with "-") and
prints it with only the transactions that moved a SOL or token balance.
With --jq the expression is evaluated over the filtered envelope instead.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to a getBlock response, or - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression evaluated over the filtered envelope (e.g. '.result.transactions | length')",
			},
		},
		Action: func(c *cli.Context) error {
			var in io.Reader = os.Stdin
			if path := c.String("file"); path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}
				defer f.Close()
				in = f
			}
			return runFilter(in, c.App.Writer, c.App.ErrWriter, c.String("jq"))
		},
	}
}

// runFilter filters the block read from in and writes the result to out.
// Transaction counts go to errOut so out stays machine-readable.
func runFilter(in io.Reader, out, errOut io.Writer, expr string) error {
	// Compile first so a bad expression fails before any work is done
	var code *gojq.Code
	if expr != "" {
		query, err := gojq.Parse(expr)
		if err != nil {
			return fmt.Errorf("failed to parse jq filter %q: %w", expr, err)
		}
		code, err = gojq.Compile(query)
		if err != nil {
			return fmt.Errorf("failed to compile jq filter %q: %w", expr, err)
		}
	}

	body, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read block: %w", err)
	}

	filtered, stats, err := solana.Filter(body)
	if err != nil {
		return fmt.Errorf("filter failed (%s): %w", solana.Classify(err), err)
	}
	fmt.Fprintf(errOut, "total=%d retained=%d\n", stats.Total, stats.Retained)

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if code == nil {
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	}

	// gojq operates on plain Go values, not structs
	encoded, err := json.Marshal(filtered)
	if err != nil {
		return fmt.Errorf("failed to encode filtered block: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("failed to decode filtered block: %w", err)
	}

	iter := code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq filter %q: %w", expr, err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
