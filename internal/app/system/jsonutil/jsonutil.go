// Package jsonutil writes the JSON bodies served under /api.
//
// Every response carries Cache-Control: no-store because the bodies hold a
// participant's health data.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies read by Decode.
const MaxBodyBytes = 64 << 10

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes {"error": code, "message": message}.
// code is a short machine-readable token such as "upstream_unavailable".
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: code, Message: message})
}

// BadRequest writes a 400 with code "bad_request".
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "bad_request", message)
}

// Unauthorized writes a 401 with code "unauthorized".
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "unauthorized", message)
}

// InternalError writes a 500. Log the real error separately; message is
// shown to the client.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "internal", message)
}

// Decode reads one JSON value from r's body into v. Bodies over
// MaxBodyBytes, unknown fields and trailing data are rejected.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("request body too large or truncated")
		}
		return err
	}
	if dec.More() {
		return fmt.Errorf("request body must hold a single JSON value")
	}
	return nil
}
