package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	payload := []byte(`{"type":"subscription.updated","customer_id":"cus_123"}`)
	secret := "whsec_test"

	sig := SignPayload(payload, secret)
	assert.Len(t, sig, 64, "hex-encoded SHA-256")
	assert.True(t, VerifySignature(payload, sig, secret))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	sig := SignPayload([]byte(`{"tier":"pro"}`), secret)

	assert.False(t, VerifySignature([]byte(`{"tier":"team"}`), sig, secret))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	sig := SignPayload(payload, "secret-a")

	assert.False(t, VerifySignature(payload, sig, "secret-b"))
	assert.False(t, VerifySignature(payload, "", "secret-a"))
}
