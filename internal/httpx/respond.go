// Package httpx provides the JSON response envelope shared by every API
// endpoint: {code, message, data}, with code mirroring the HTTP status.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire format consumed by the admin console.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK sends a success envelope with the given payload.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Code: 200, Message: "success", Data: data})
}

// OKMessage sends a success envelope with a custom message and no payload.
func OKMessage(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, Envelope{Code: 200, Message: message})
}

// Fail sends an error envelope. The HTTP status matches the envelope code.
func Fail(w http.ResponseWriter, code int, message string) {
	write(w, code, Envelope{Code: code, Message: message})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
