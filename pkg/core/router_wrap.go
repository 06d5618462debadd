package core

import (
	"context"
	"io"
	"net/http"
	"time"
)

// maxBody caps request bodies read by inproc handlers.
const maxBody = 1 << 20

// serveInproc adapts an InprocHandler to HTTP. Handler errors become
// plain-text bodies with the handler's status.
func serveInproc(h InprocHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		out, status, err := h(r.Context(), body)
		if err != nil {
			http.Error(w, err.Error(), statusIf(status, http.StatusInternalServerError))
			return
		}
		writeJSON(w, out, statusIf(status, http.StatusOK))
	}
}

func withTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// writeJSON writes payload, or {} when empty. Replies reflect live state
// and are never cached.
func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}
	_, _ = w.Write(payload)
}

func statusIf(s, def int) int {
	if s > 0 {
		return s
	}
	return def
}
