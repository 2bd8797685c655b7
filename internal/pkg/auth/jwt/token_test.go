package jwt

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	payload := &Payload{ID: "user-1", Phone: "+15550001111"}

	token, err := GenerateToken(payload, "secret", UserIdentityExpiration)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parsed, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.ID != "user-1" || parsed.Phone != "+15550001111" {
		t.Fatalf("unexpected claims %+v", parsed)
	}
	if parsed.Issuer != TokenIssuer {
		t.Fatalf("unexpected issuer %q", parsed.Issuer)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	payload := &Payload{ID: "user-1"}

	token, err := GenerateToken(payload, "secret", UserIdentityExpiration)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseTokenExpired(t *testing.T) {
	payload := &Payload{ID: "user-1"}

	token, err := GenerateToken(payload, "secret", -UserIdentityExpiration)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
