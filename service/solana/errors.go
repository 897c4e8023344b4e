package solana

import (
	"context"
	"errors"
	"fmt"
)

// Errors returned while reading the block envelope.
var (
	ErrMissingResult        = errors.New("block.result is null")
	ErrMissingTransactions  = errors.New("block.result.transactions is null")
	ErrTransactionsNotArray = errors.New("block.result.transactions is not an array")
)

// ErrLengthMismatch is returned when meta.preBalances and meta.postBalances differ in length.
var ErrLengthMismatch = errors.New("pre and post balances size does not match")

// FieldErrorKind distinguishes a missing field from one with the wrong JSON shape.
type FieldErrorKind int

const (
	MissingField FieldErrorKind = iota
	TypeMismatch
)

func (k FieldErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "unknown"
	}
}

// FieldError reports a transaction field that could not be read.
type FieldError struct {
	Field string
	Kind  FieldErrorKind
	Err   error // underlying decode error, nil for MissingField
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ParseError reports a token amount that is not a valid uint64.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q as uint64: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UpstreamError reports a failed call to the upstream node or an unusable response body.
type UpstreamError struct {
	Op         string
	StatusCode int // set when the node answered with a non-2xx status
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("upstream %s: timed out: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream %s: unexpected status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorKind is a coarse label for an error, used for logs and metrics.
type ErrorKind string

const (
	KindUpstream          ErrorKind = "upstream"
	KindUpstreamTimeout   ErrorKind = "upstream_timeout"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindTransactionShape  ErrorKind = "transaction_shape"
	KindUnknown           ErrorKind = "unknown"
)

// Classify maps err to the category it belongs to.
func Classify(err error) ErrorKind {
	var upErr *UpstreamError
	var fieldErr *FieldError
	var parseErr *ParseError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &upErr):
		if upErr.Timeout {
			return KindUpstreamTimeout
		}
		return KindUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return KindUpstreamTimeout
	case errors.Is(err, ErrMissingResult),
		errors.Is(err, ErrMissingTransactions),
		errors.Is(err, ErrTransactionsNotArray):
		return KindMalformedResponse
	case errors.As(err, &fieldErr),
		errors.As(err, &parseErr),
		errors.Is(err, ErrLengthMismatch):
		return KindTransactionShape
	default:
		return KindUnknown
	}
}
