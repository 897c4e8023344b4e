package solana

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// NodeRPC is the subset of the solana-go RPC client used to inspect the
// upstream node. *rpc.Client satisfies it.
type NodeRPC interface {
	GetHealth(ctx context.Context) (string, error)
	GetSlot(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

// NodeStatus is a point-in-time view of the upstream node.
type NodeStatus struct {
	Health  string        `json:"health"`
	Slot    uint64        `json:"slot"`
	Latency time.Duration `json:"latency"`
}

// NodeClient reports on the health of the upstream node. It is not used on
// the request path.
type NodeClient struct {
	rpc    NodeRPC
	logger *slog.Logger
}

// NewNodeClient creates a NodeClient backed by the solana-go RPC client.
// For premium RPC endpoints that require API keys, include the key in the URL.
func NewNodeClient(rpcURL string, logger *slog.Logger) *NodeClient {
	return NewNodeClientWithRPC(rpc.New(rpcURL), logger)
}

// NewNodeClientWithRPC creates a NodeClient around an existing NodeRPC.
func NewNodeClientWithRPC(r NodeRPC, logger *slog.Logger) *NodeClient {
	return &NodeClient{rpc: r, logger: logger}
}

// Status queries getHealth and the latest finalized slot.
func (n *NodeClient) Status(ctx context.Context) (*NodeStatus, error) {
	start := time.Now()

	health, err := n.rpc.GetHealth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getHealth: %w", err)
	}

	slot, err := n.rpc.GetSlot(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("getSlot: %w", err)
	}

	status := &NodeStatus{
		Health:  health,
		Slot:    slot,
		Latency: time.Since(start),
	}
	n.logger.DebugContext(ctx, "upstream node status",
		"health", status.Health,
		"slot", status.Slot,
		"latency", status.Latency,
	)
	return status, nil
}
