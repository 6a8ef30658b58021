// Package rpc implements the JSON-RPC-over-unix-socket server (C14):
// one newline-delimited JSON request per connection, bounded in-flight
// concurrency, and a fixed-depth back-pressure queue that fails fast
// with Overloaded rather than growing without limit.
package rpc

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// Method names the supported RPC operations.
type Method string

const (
	MethodQuery    Method = "query"
	MethodConfirm  Method = "confirm"
	MethodRollback Method = "rollback"
	MethodStatus   Method = "status"
	MethodHealth   Method = "get_health"
)

// Request is one newline-delimited JSON-RPC request read off the
// socket. Args is deferred decoding so each handler can unmarshal its
// own typed arguments.
type Request struct {
	ID     string          `json:"id" validate:"required"`
	Method Method          `json:"method" validate:"required"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Response is always written back exactly once per Request, even on
// internal error or overload.
type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    ErrorCode       `json:"code,omitempty"`
}

// ErrorCode is a closed set of machine-readable failure reasons a
// client can branch on without string-matching Error.
type ErrorCode string

const (
	CodeNone            ErrorCode = ""
	CodeInvalidRequest   ErrorCode = "invalid_request"
	CodeUnknownMethod    ErrorCode = "unknown_method"
	CodeOverloaded       ErrorCode = "overloaded"
	CodeInternal         ErrorCode = "internal"
	CodeValidationFailed ErrorCode = "validation_failed"
)

func errorResponse(id string, code ErrorCode, err error) Response {
	return Response{ID: id, Success: false, Code: code, Error: err.Error()}
}

func dataResponse(id string, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(id, CodeInternal, err)
	}
	return Response{ID: id, Success: true, Data: data}
}

// QueryArgs is the payload for MethodQuery.
type QueryArgs struct {
	Text  string            `json:"text" validate:"required"`
	Slots map[string]string `json:"slots,omitempty"`
}

// ConfirmArgs is the payload for MethodConfirm.
type ConfirmArgs struct {
	PlanID string `json:"plan_id" validate:"required,uuid4"`
	Phrase string `json:"phrase" validate:"required"`
}

// RollbackArgs is the payload for MethodRollback.
type RollbackArgs struct {
	PlanID string `json:"plan_id" validate:"required,uuid4"`
	Phrase string `json:"phrase" validate:"required"`
}

var structValidator = validator.New()

func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	if err := structValidator.Struct(v); err != nil {
		return v, err
	}
	return v, nil
}
