package solana

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// HasNativeTransfer reports whether any account's lamport balance increased.
func HasNativeTransfer(pre, post []uint64) (bool, error) {
	if len(pre) != len(post) {
		return false, fmt.Errorf("%w: %d pre, %d post", ErrLengthMismatch, len(pre), len(post))
	}
	for i := range pre {
		if pre[i] < post[i] {
			return true, nil
		}
	}
	return false, nil
}

// HasTokenTransfer reports whether a token balance increased. Balances are
// paired by position in the two lists, not by account or mint.
func HasTokenTransfer(pre, post []TokenBalance) (bool, error) {
	if len(post) == 0 {
		return false, nil
	}

	// More post entries than pre means a token account was created.
	if len(pre) < len(post) {
		return true, nil
	}

	for i := range post {
		preAmount, err := pre[i].amount(fmt.Sprintf("meta.preTokenBalances[%d]", i))
		if err != nil {
			return false, err
		}
		postAmount, err := post[i].amount(fmt.Sprintf("meta.postTokenBalances[%d]", i))
		if err != nil {
			return false, err
		}
		if preAmount < postAmount {
			return true, nil
		}
	}
	return false, nil
}

// NativeTransfer decodes preBalances and postBalances and runs HasNativeTransfer.
func (m *Meta) NativeTransfer() (bool, error) {
	pre, err := decodeBalances("meta.preBalances", m.PreBalances)
	if err != nil {
		return false, err
	}
	post, err := decodeBalances("meta.postBalances", m.PostBalances)
	if err != nil {
		return false, err
	}
	return HasNativeTransfer(pre, post)
}

// TokenTransfer decodes preTokenBalances and postTokenBalances and runs HasTokenTransfer.
func (m *Meta) TokenTransfer() (bool, error) {
	var pre, post []TokenBalance
	if err := decodeField("meta.preTokenBalances", m.PreTokenBalances, &pre); err != nil {
		return false, err
	}
	if err := decodeField("meta.postTokenBalances", m.PostTokenBalances, &post); err != nil {
		return false, err
	}
	return HasTokenTransfer(pre, post)
}

// UnmarshalJSON keeps the entry as raw JSON so malformed entries surface only
// when their amount is read.
func (b *TokenBalance) UnmarshalJSON(data []byte) error {
	*b = append((*b)[:0], data...)
	return nil
}

// MarshalJSON returns the entry unchanged.
func (b TokenBalance) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return b, nil
}

func (b TokenBalance) amount(field string) (uint64, error) {
	var balance object
	if err := decodeField(field, json.RawMessage(b), &balance); err != nil {
		return 0, err
	}

	field += ".uiTokenAmount"
	var ui object
	if err := decodeField(field, balance["uiTokenAmount"], &ui); err != nil {
		return 0, err
	}

	field += ".amount"
	var s string
	if err := decodeField(field, ui["amount"], &s); err != nil {
		return 0, err
	}

	// A single leading plus sign is accepted, as Rust's u64 parser does.
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: s, Err: err}
	}
	return v, nil
}

// decodeBalances reads a lamport balance list. Null elements are rejected
// rather than read as zero.
func decodeBalances(field string, raw json.RawMessage) ([]uint64, error) {
	var values []*uint64
	if err := decodeField(field, raw, &values); err != nil {
		return nil, err
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		if v == nil {
			return nil, &FieldError{Field: fmt.Sprintf("%s[%d]", field, i), Kind: TypeMismatch}
		}
		out[i] = *v
	}
	return out, nil
}
