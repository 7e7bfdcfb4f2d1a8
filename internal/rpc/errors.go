package rpc

import "fmt"

// RpcError is the error payload embedded in a response's result object.
type RpcError struct {
	Code    int    `json:"error_code"`
	Name    string `json:"error"`
	Message string `json:"error_message"`
}

// Error codes, stable across releases.
const (
	CodeMethodNotFound = 1
	CodeInvalidParams  = 2
	CodeNotFound       = 3
	CodeEngineError    = 4
	CodeInternal       = 5
)

func errMethodNotFound(method string) *RpcError {
	return &RpcError{Code: CodeMethodNotFound, Name: "methodNotFound", Message: fmt.Sprintf("Unknown method '%s'", method)}
}

func errInvalidParams(msg string) *RpcError {
	return &RpcError{Code: CodeInvalidParams, Name: "invalidParams", Message: msg}
}

func errNotFound(msg string) *RpcError {
	return &RpcError{Code: CodeNotFound, Name: "entryNotFound", Message: msg}
}

// errEngine surfaces a core engine error verbatim; the engine's error
// strings are its public error codes.
func errEngine(err error) *RpcError {
	return &RpcError{Code: CodeEngineError, Name: "engineError", Message: err.Error()}
}
