package webhook

import "testing"

func TestVerify(t *testing.T) {
	t.Parallel()

	secret := []byte("whsec_test")
	payload := []byte(`{"event":"card.moved"}`)
	sig := Sign(secret, payload)

	tests := []struct {
		name      string
		secret    []byte
		payload   []byte
		signature string
		want      bool
	}{
		{name: "valid", secret: secret, payload: payload, signature: sig, want: true},
		{name: "valid with sha256 prefix", secret: secret, payload: payload, signature: "sha256=" + sig, want: true},
		{name: "valid with surrounding whitespace", secret: secret, payload: payload, signature: " " + sig + " ", want: true},
		{name: "wrong secret", secret: []byte("other"), payload: payload, signature: sig, want: false},
		{name: "tampered payload", secret: secret, payload: []byte(`{"event":"card.deleted"}`), signature: sig, want: false},
		{name: "not hex", secret: secret, payload: payload, signature: "zz" + sig[2:], want: false},
		{name: "empty signature", secret: secret, payload: payload, signature: "", want: false},
		{name: "empty secret rejects everything", secret: nil, payload: payload, signature: Sign(nil, payload), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Verify(tt.secret, tt.payload, tt.signature); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}
