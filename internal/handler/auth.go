package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

// maxBodyBytes caps the webhook body. Slack payloads are a few KiB.
const maxBodyBytes = 1 << 20

// requireSlackSignature reads the whole body, verifies the request signature
// over the raw bytes and hands the same bytes to next.
func (h *Handler) requireSlackSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			slog.Warn("failed to read request body", "error", err)
			writeText(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !h.verifier.Verify(r.Context(), r.Header, body) {
			writeText(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
