package server

import (
	"encoding/json"
	"net/http"
)

// problem is an RFC 7807 error body.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// respondJSON writes v as JSON with the given status. The payload is
// marshaled first so an encoding failure never leaves a partial response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// respondError writes an application/problem+json error.
func respondError(w http.ResponseWriter, status int, detail string) {
	payload, err := json.Marshal(problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
