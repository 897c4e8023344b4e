package solana

import (
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// GetBlockRequest is a JSON-RPC getBlock request body accepted by the proxy.
type GetBlockRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// GetBlockConfig is the configuration object passed as the second getBlock param.
type GetBlockConfig struct {
	Encoding                       solanago.EncodingType      `json:"encoding"`
	TransactionDetails             rpc.TransactionDetailsType `json:"transactionDetails"`
	MaxSupportedTransactionVersion *uint64                    `json:"maxSupportedTransactionVersion,omitempty"`
	Commitment                     rpc.CommitmentType         `json:"commitment,omitempty"`
	Rewards                        *bool                      `json:"rewards,omitempty"`
}

// NewGetBlockRequest builds a request for slot with the settings the filter
// needs: JSON encoding and full transaction details including meta.
func NewGetBlockRequest(id, slot uint64) *GetBlockRequest {
	version := uint64(0)
	rewards := false
	return &GetBlockRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "getBlock",
		Params: []any{
			slot,
			GetBlockConfig{
				Encoding:                       solanago.EncodingJSON,
				TransactionDetails:             rpc.TransactionDetailsFull,
				MaxSupportedTransactionVersion: &version,
				Commitment:                     rpc.CommitmentFinalized,
				Rewards:                        &rewards,
			},
		},
	}
}
