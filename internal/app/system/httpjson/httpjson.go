// internal/app/system/httpjson/httpjson.go
//
// Package httpjson writes the API's uniform response envelope:
//
//	{"success": true,  "message": "...", "result": ...}
//	{"success": false, "message": "<code>"}
//
// Failure messages are short machine-readable codes (see features/errors);
// human-readable text never appears in the message field of a failure.
package httpjson

import (
	"encoding/json"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies read through Decode.
const MaxBodyBytes = 1 << 20

// Envelope is the wire shape of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// OK writes a 200 success envelope carrying result.
func OK(w http.ResponseWriter, message string, result any) {
	write(w, http.StatusOK, Envelope{Success: true, Message: message, Result: result})
}

// Created writes a 201 success envelope carrying result.
func Created(w http.ResponseWriter, message string, result any) {
	write(w, http.StatusCreated, Envelope{Success: true, Message: message, Result: result})
}

// Fail writes a failure envelope with the given status and wire code.
func Fail(w http.ResponseWriter, status int, code string) {
	write(w, status, Envelope{Success: false, Message: code})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Decode reads a JSON request body into dst. The body is size-limited and
// unknown fields are tolerated.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	return json.NewDecoder(r.Body).Decode(dst)
}
