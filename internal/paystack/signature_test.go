package paystack

import "testing"

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event_type":"charge.success","data":{"reference":"ORD-1234"}}`)
	sig := Sign(secret, body)

	if !VerifySignature(secret, body, sig) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature("other_secret", body, sig) {
		t.Fatal("signature accepted under wrong secret")
	}
	if VerifySignature(secret, body, "") {
		t.Fatal("empty signature accepted")
	}
}

func TestVerifySignatureTamperedBody(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event_type":"charge.success","data":{"reference":"ORD-1234"}}`)
	sig := Sign(secret, body)

	// flipping any single byte after signing must fail verification
	for i := range body {
		tampered := append([]byte(nil), body...)
		tampered[i] ^= 0x01
		if VerifySignature(secret, tampered, sig) {
			t.Fatalf("tampered body accepted (byte %d)", i)
		}
	}
}
