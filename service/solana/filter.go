package solana

import (
	"encoding/json"
	"fmt"
)

// Stats counts the transactions seen and kept by a single filter pass.
type Stats struct {
	Total    int
	Retained int
}

// Filter decodes an upstream getBlock response and filters it.
func Filter(body []byte) (*FilteredEnvelope, Stats, error) {
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, Stats{}, err
	}
	return FilterBlock(env)
}

// FilterBlock rebuilds env keeping only the transactions that moved a native or
// token balance. The envelope and block header fields are copied verbatim and
// the retained transactions keep their original order.
//
// Any error in a single transaction fails the whole block.
func FilterBlock(env *Envelope) (*FilteredEnvelope, Stats, error) {
	if isNull(env.Result) {
		return nil, Stats{}, ErrMissingResult
	}

	var result object
	if err := json.Unmarshal(env.Result, &result); err != nil {
		// A result that is not an object has no transactions field.
		return nil, Stats{}, ErrMissingTransactions
	}
	if isNull(result["transactions"]) {
		return nil, Stats{}, ErrMissingTransactions
	}

	var txs []json.RawMessage
	if err := json.Unmarshal(result["transactions"], &txs); err != nil {
		return nil, Stats{}, ErrTransactionsNotArray
	}

	stats := Stats{Total: len(txs)}
	retained := make([]json.RawMessage, 0, len(txs))
	for i, tx := range txs {
		ok, err := hasTransfer(tx)
		if err != nil {
			return nil, stats, fmt.Errorf("transaction %d: %w", i, err)
		}
		if ok {
			retained = append(retained, tx)
		}
	}
	stats.Retained = len(retained)

	return &FilteredEnvelope{
		ID:      env.ID,
		JSONRPC: env.JSONRPC,
		Result: &Block{
			BlockHeight:       result["blockHeight"],
			BlockTime:         result["blockTime"],
			Blockhash:         result["blockhash"],
			ParentSlot:        result["parentSlot"],
			PreviousBlockhash: result["previousBlockhash"],
			Transactions:      retained,
		},
	}, stats, nil
}

// hasTransfer checks native balances first and only looks at token balances
// when no lamport balance increased.
func hasTransfer(tx json.RawMessage) (bool, error) {
	var record object
	if err := json.Unmarshal(tx, &record); err != nil {
		return false, &FieldError{Field: "transaction", Kind: TypeMismatch, Err: err}
	}

	var fields object
	if err := decodeField("meta", record["meta"], &fields); err != nil {
		return false, err
	}
	meta := newMeta(fields)

	native, err := meta.NativeTransfer()
	if err != nil || native {
		return native, err
	}
	return meta.TokenTransfer()
}
