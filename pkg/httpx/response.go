package httpx

import (
	"encoding/json"
	"net/http"
)

// Generic client-facing messages shared by the fallback handlers.
const (
	MsgEndpointNotFound    = "Endpoint not found"
	MsgMethodNotAllowed    = "Method not allowed"
	MsgInternalServerError = "Internal server error"
	MsgInvalidJSON         = "Invalid JSON"
)

// ErrorEnvelope is the body of every failed API response.
type ErrorEnvelope struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error"   example:"Todo not found"`
} // @name ErrorEnvelope

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// silently discarded. Use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes the standard {"success": false, "error": message} envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorEnvelope{Success: false, Error: message})
}

// NotFound answers unmatched routes with the 404 envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusNotFound, MsgEndpointNotFound)
}

// MethodNotAllowed answers known paths hit with an unsupported verb.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}
