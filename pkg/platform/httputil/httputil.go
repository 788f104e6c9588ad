// Package httputil centralizes JSON response writing and request decoding so
// every handler produces the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "colonx/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into the JSON error envelope. Internal
// errors omit the description so implementation detail never leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	if e, ok := err.(dErrors.Error); ok && code != dErrors.CodeInternal && e.Description != "" {
		body["error_description"] = e.Description
	}
	WriteJSON(w, status, body)
}

// Validator is implemented by request DTOs that check their own shape.
type Validator interface {
	Validate() error
}

// Decode unmarshals the request body into T and runs its validation. On
// failure it writes the error response and returns false.
func Decode[T Validator](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return req, false
	}
	return req, true
}
