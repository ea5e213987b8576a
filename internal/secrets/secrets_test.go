package secrets

import (
	"testing"
)

const testSecret = "this-is-a-valid-32-character-key"

func TestNewBox_ShortSecret(t *testing.T) {
	_, err := NewBox("short", "api")
	if err != ErrInvalidKey {
		t.Errorf("NewBox() error = %v, want %v", err, ErrInvalidKey)
	}
}

func TestBox_RoundTrip(t *testing.T) {
	box, err := NewBox(testSecret, "api")
	if err != nil {
		t.Fatalf("NewBox() error = %v", err)
	}

	testCases := []struct {
		name      string
		plaintext string
	}{
		{"finnhub key", "c1a2b3c4d5e6f7g8h9i0"},
		{"symbols", "P@ss!#$%^&*()"},
		{"unicode", "ключ密钥🔐"},
		{"empty", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := box.Seal(tc.plaintext)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if tc.plaintext != "" && !IsSealed(sealed) {
				t.Errorf("Seal() = %q, want sealed value", sealed)
			}
			got, err := box.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if got != tc.plaintext {
				t.Errorf("Open() = %q, want %q", got, tc.plaintext)
			}
		})
	}
}

func TestBox_NonceIsRandom(t *testing.T) {
	box, _ := NewBox(testSecret, "api")
	a, _ := box.Seal("same")
	b, _ := box.Seal("same")
	if a == b {
		t.Error("Seal() produced identical values for the same plaintext")
	}
}

func TestBox_OpenPlainPassesThrough(t *testing.T) {
	box, _ := NewBox(testSecret, "api")
	got, err := box.Open("legacy-plain-key")
	if err != nil || got != "legacy-plain-key" {
		t.Errorf("Open() = %q, %v; want plain value back", got, err)
	}
}

func TestBox_WrongKeyFails(t *testing.T) {
	box, _ := NewBox(testSecret, "api")
	other, _ := NewBox("another-valid-32-character-secret!", "api")

	sealed, _ := box.Seal("key")
	if _, err := other.Open(sealed); err != ErrDecryptionFailed {
		t.Errorf("Open() with wrong key error = %v, want %v", err, ErrDecryptionFailed)
	}
	if _, err := box.Open(prefix + "!!!"); err != ErrInvalidCiphertext {
		t.Errorf("Open() of garbage error = %v, want %v", err, ErrInvalidCiphertext)
	}
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "***",
		"abcdefgh12": "******gh12",
	}
	for in, want := range tests {
		if got := Redact(in); got != want {
			t.Errorf("Redact(%q) = %q, want %q", in, got, want)
		}
	}
}
