package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clerk delivers webhooks through svix. The signed content is
// "{msg-id}.{timestamp}.{payload}" keyed with the base64 secret from the
// dashboard; the signature header may carry several space-delimited
// versioned signatures during secret rotation.
const (
	webhookSecretPrefix = "whsec_"
	signatureVersion    = "v1"

	// Deliveries older or newer than this are rejected to bound replay.
	webhookTolerance = 5 * time.Minute
)

var (
	ErrWebhookSecret    = errors.New("malformed webhook secret")
	ErrWebhookHeaders   = errors.New("missing webhook headers")
	ErrWebhookTimestamp = errors.New("webhook timestamp outside tolerance")
	ErrWebhookSignature = errors.New("no matching webhook signature")
)

// WebhookVerifier authenticates svix-signed webhook deliveries.
type WebhookVerifier struct {
	key []byte
	now func() time.Time
}

// NewWebhookVerifier decodes the dashboard signing secret. The secret is
// the base64 key with a "whsec_" prefix.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	trimmed := strings.TrimPrefix(secret, webhookSecretPrefix)
	if trimmed == "" {
		return nil, ErrWebhookSecret
	}
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookSecret, err)
	}
	return &WebhookVerifier{key: key, now: time.Now}, nil
}

// Verify checks one delivery: msgID and timestamp come from the svix-id
// and svix-timestamp headers, signatureHeader from svix-signature. The
// payload must be the raw request body, before any JSON decoding.
func (v *WebhookVerifier) Verify(msgID, timestamp, signatureHeader string, payload []byte) error {
	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return ErrWebhookHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookTimestamp, err)
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return ErrWebhookTimestamp
	}

	expected := v.sign(msgID, timestamp, payload)
	for _, candidate := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != signatureVersion {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrWebhookSignature
}

func (v *WebhookVerifier) sign(msgID, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
