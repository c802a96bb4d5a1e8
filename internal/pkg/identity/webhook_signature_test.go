package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func signPayload(t *testing.T, secret, msgID, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret[len("whsec_"):])
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestWebhookVerifier(t *testing.T, at time.Time) *WebhookVerifier {
	t.Helper()
	v, err := NewWebhookVerifier(testSecret)
	require.NoError(t, err)
	v.now = func() time.Time { return at }
	return v
}

func TestWebhookVerifyValidSignature(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	v := newTestWebhookVerifier(t, now)

	payload := []byte(`{"type":"user.created","data":{"id":"user_abc"}}`)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := signPayload(t, testSecret, "msg_1", ts, payload)

	assert.NoError(t, v.Verify("msg_1", ts, sig, payload))
}

func TestWebhookVerifyMultipleSignatures(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	v := newTestWebhookVerifier(t, now)

	payload := []byte(`{}`)
	ts := strconv.FormatInt(now.Unix(), 10)
	good := signPayload(t, testSecret, "msg_1", ts, payload)
	header := "v1,bm90LXRoZS1yaWdodC1zaWduYXR1cmU= " + good

	assert.NoError(t, v.Verify("msg_1", ts, header, payload))
}

func TestWebhookVerifyRejectsTamperedPayload(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	v := newTestWebhookVerifier(t, now)

	ts := strconv.FormatInt(now.Unix(), 10)
	sig := signPayload(t, testSecret, "msg_1", ts, []byte(`{"a":1}`))

	err := v.Verify("msg_1", ts, sig, []byte(`{"a":2}`))
	assert.ErrorIs(t, err, ErrWebhookSignature)
}

func TestWebhookVerifyRejectsWrongMsgID(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	v := newTestWebhookVerifier(t, now)

	payload := []byte(`{}`)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := signPayload(t, testSecret, "msg_1", ts, payload)

	assert.ErrorIs(t, v.Verify("msg_2", ts, sig, payload), ErrWebhookSignature)
}

func TestWebhookVerifyTimestampTolerance(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	v := newTestWebhookVerifier(t, now)
	payload := []byte(`{}`)

	stale := strconv.FormatInt(now.Add(-6*time.Minute).Unix(), 10)
	sig := signPayload(t, testSecret, "msg_1", stale, payload)
	assert.ErrorIs(t, v.Verify("msg_1", stale, sig, payload), ErrWebhookTimestamp)

	future := strconv.FormatInt(now.Add(6*time.Minute).Unix(), 10)
	sig = signPayload(t, testSecret, "msg_1", future, payload)
	assert.ErrorIs(t, v.Verify("msg_1", future, sig, payload), ErrWebhookTimestamp)

	recent := strconv.FormatInt(now.Add(-4*time.Minute).Unix(), 10)
	sig = signPayload(t, testSecret, "msg_1", recent, payload)
	assert.NoError(t, v.Verify("msg_1", recent, sig, payload))
}

func TestWebhookVerifyMissingHeaders(t *testing.T) {
	v := newTestWebhookVerifier(t, time.Now())

	assert.ErrorIs(t, v.Verify("", "123", "v1,abc", []byte(`{}`)), ErrWebhookHeaders)
	assert.ErrorIs(t, v.Verify("msg_1", "", "v1,abc", []byte(`{}`)), ErrWebhookHeaders)
	assert.ErrorIs(t, v.Verify("msg_1", "123", "", []byte(`{}`)), ErrWebhookHeaders)
}

func TestWebhookVerifyIgnoresUnknownVersions(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	v := newTestWebhookVerifier(t, now)

	payload := []byte(`{}`)
	ts := strconv.FormatInt(now.Unix(), 10)
	good := signPayload(t, testSecret, "msg_1", ts, payload)
	v2 := "v2," + good[len("v1,"):]

	assert.ErrorIs(t, v.Verify("msg_1", ts, v2, payload), ErrWebhookSignature)
	assert.NoError(t, v.Verify("msg_1", ts, v2+" "+good, payload))
}

func TestNewWebhookVerifierRejectsBadSecret(t *testing.T) {
	_, err := NewWebhookVerifier("whsec_")
	assert.ErrorIs(t, err, ErrWebhookSecret)

	_, err = NewWebhookVerifier("whsec_!!!not-base64!!!")
	assert.ErrorIs(t, err, ErrWebhookSecret)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", BearerToken("Bearer abc.def.ghi"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
	assert.Empty(t, BearerToken("Bearer "))
}
