package solana

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotJSON = errors.New("response body is not valid JSON")

// Envelope is the JSON-RPC response returned by the upstream node for getBlock.
// Every field is kept as raw JSON; only Result is ever looked into.
type Envelope struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC json.RawMessage `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
}

// FilteredEnvelope is the response sent back to the caller. ID and JSONRPC are
// echoed from the upstream envelope unchanged.
type FilteredEnvelope struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC json.RawMessage `json:"jsonrpc"`
	Result  *Block          `json:"result"`
}

// Block is a getBlock result with a pruned transaction list. The header fields
// are passed through verbatim and come out as null when upstream omitted them.
type Block struct {
	BlockHeight       json.RawMessage   `json:"blockHeight"`
	BlockTime         json.RawMessage   `json:"blockTime"`
	Blockhash         json.RawMessage   `json:"blockhash"`
	ParentSlot        json.RawMessage   `json:"parentSlot"`
	PreviousBlockhash json.RawMessage   `json:"previousBlockhash"`
	Transactions      []json.RawMessage `json:"transactions"`
}

// object is a decoded JSON object. Keys match exactly, unlike struct tag
// decoding which ignores case.
type object map[string]json.RawMessage

// Meta holds the balance fields of a transaction's meta object. Each field is
// decoded by the detector that needs it. Upstream meta is read by newMeta; the
// tags are only used when encoding.
type Meta struct {
	PreBalances       json.RawMessage `json:"preBalances"`
	PostBalances      json.RawMessage `json:"postBalances"`
	PreTokenBalances  json.RawMessage `json:"preTokenBalances"`
	PostTokenBalances json.RawMessage `json:"postTokenBalances"`
}

// TokenBalance is one entry of meta.preTokenBalances or meta.postTokenBalances.
// Only uiTokenAmount.amount is read from it.
type TokenBalance json.RawMessage

func newMeta(obj object) *Meta {
	return &Meta{
		PreBalances:       obj["preBalances"],
		PostBalances:      obj["postBalances"],
		PreTokenBalances:  obj["preTokenBalances"],
		PostTokenBalances: obj["postTokenBalances"],
	}
}

// DecodeEnvelope parses an upstream response body. Bodies that are not JSON are
// an UpstreamError. JSON that is not an object yields an empty envelope, which
// the filter rejects for its missing result.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	if !json.Valid(body) {
		return nil, &UpstreamError{Op: "decode", Err: errNotJSON}
	}
	var obj object
	if err := json.Unmarshal(body, &obj); err != nil {
		return &Envelope{}, nil
	}
	return &Envelope{
		ID:      obj["id"],
		JSONRPC: obj["jsonrpc"],
		Result:  obj["result"],
	}, nil
}

// decodeField unmarshals raw into dst, reporting absent and null values as
// MissingField and shape errors as TypeMismatch.
func decodeField(name string, raw json.RawMessage, dst any) error {
	if isNull(raw) {
		return &FieldError{Field: name, Kind: MissingField}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &FieldError{Field: name, Kind: TypeMismatch, Err: err}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
