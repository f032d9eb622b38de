package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("Hash() should return an error for passwords longer than 72 bytes")
	}
	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		plaintext string
		wantErr   error
	}{
		{name: "correct password", hash: hash, plaintext: "correct-horse"},
		{name: "wrong password", hash: hash, plaintext: "battery-staple", wantErr: ErrInvalidPassword},
		{name: "empty password", hash: hash, plaintext: "", wantErr: ErrInvalidPassword},
		{name: "account without password", hash: "", plaintext: "anything", wantErr: ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.plaintext)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	err := ps.Verify("not-a-bcrypt-hash", "password")
	if err == nil {
		t.Fatal("Verify() should fail on a malformed hash")
	}
	if errors.Is(err, ErrInvalidPassword) {
		t.Error("a malformed hash is a storage problem, not a wrong password")
	}
}
