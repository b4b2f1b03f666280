package models

import "testing"

func TestDeriveProviderID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := DeriveProviderID("Betfair Exchange")
		b := DeriveProviderID("Betfair Exchange")
		if a != b {
			t.Errorf("same name produced different ids: %s vs %s", a, b)
		}
	})

	t.Run("distinct per name", func(t *testing.T) {
		a := DeriveProviderID("Betfair Exchange")
		b := DeriveProviderID("Sportradar")
		if a == b {
			t.Error("different names produced the same id")
		}
	})

	t.Run("case sensitive", func(t *testing.T) {
		if DeriveProviderID("sportradar") == DeriveProviderID("Sportradar") {
			t.Error("name derivation should be case sensitive")
		}
	})
}

func TestValidAuthType(t *testing.T) {
	for _, at := range []AuthType{AuthAPIKeyHeader, AuthAPIKeyQuery, AuthHTTPBasic, AuthOAuth2, AuthCertificate, AuthCustom} {
		if !ValidAuthType(at) {
			t.Errorf("%s should be valid", at)
		}
	}
	if ValidAuthType("bearer") {
		t.Error("unknown auth type should be invalid")
	}
}
