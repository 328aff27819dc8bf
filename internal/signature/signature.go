// Package signature verifies that webhook requests were signed by Slack.
//
// Slack signs "v0:" + timestamp + ":" + body with HMAC-SHA256 using the app's
// signing secret and sends the hex digest, prefixed with "v0=", in the
// X-Slack-Signature header.
package signature

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pavelanni/slackquiz/internal/secrets"
)

const (
	TimestampHeader = "X-Slack-Request-Timestamp"
	SignatureHeader = "X-Slack-Signature"

	version = "v0"

	// ReplayWindow is the maximum allowed skew between the request timestamp and now.
	ReplayWindow = 300 * time.Second
)

// Verifier checks request signatures against a secret from a secrets.Store.
type Verifier struct {
	secrets  secrets.Store
	secretID string
	now      func() time.Time
}

// NewVerifier creates a Verifier that looks up secretID on every call.
func NewVerifier(store secrets.Store, secretID string) *Verifier {
	return &Verifier{secrets: store, secretID: secretID, now: time.Now}
}

// NewVerifierWithClock is used by tests for deterministic timestamps.
func NewVerifierWithClock(store secrets.Store, secretID string, now func() time.Time) *Verifier {
	return &Verifier{secrets: store, secretID: secretID, now: now}
}

// Verify reports whether header and body carry a fresh, valid signature.
// It never returns an error; every failure is reported as false.
func (v *Verifier) Verify(ctx context.Context, header http.Header, body []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("signature verification panicked", "panic", r)
			ok = false
		}
	}()

	secret, err := v.secrets.Get(ctx, v.secretID)
	if err != nil || len(secret) == 0 {
		slog.Warn("signing secret unavailable", "id", v.secretID, "error", err)
		return false
	}

	ts := header.Get(TimestampHeader)
	if err := checkTimestamp(ts, v.now()); err != nil {
		slog.Debug("rejecting request timestamp", "error", err)
		return false
	}

	expected := Sign(secret, ts, body)
	provided := header.Get(SignatureHeader)
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		slog.Debug("signature mismatch")
		return false
	}
	return true
}

// Sign returns the "v0=<hex>" signature for a timestamp and body.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(version + ":" + timestamp + ":"))
	mac.Write(body)
	return version + "=" + hex.EncodeToString(mac.Sum(nil))
}

// Headers builds the pair of headers Slack would send for body at time t.
func Headers(secret []byte, t time.Time, body []byte) http.Header {
	ts := strconv.FormatInt(t.Unix(), 10)
	h := make(http.Header)
	h.Set(TimestampHeader, ts)
	h.Set(SignatureHeader, Sign(secret, ts, body))
	return h
}

func checkTimestamp(raw string, now time.Time) error {
	if raw == "" {
		return fmt.Errorf("missing %s", TimestampHeader)
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	window := int64(ReplayWindow / time.Second)
	if sec < now.Unix()-window || sec > now.Unix()+window {
		return fmt.Errorf("timestamp %d outside replay window", sec)
	}
	return nil
}
