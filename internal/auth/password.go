package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor, roughly 250ms per hash on current
// server hardware.
const defaultCost = 12

// ErrInvalidPassword is returned by Verify when the password does not match,
// including when the account has no password at all (GitHub sign-in).
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification. The cost is a
// field so tests can run with the minimum cost.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with the given bcrypt
// cost. Pass bcrypt.MinCost (4) from tests in other packages.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes plaintext with bcrypt. The result embeds salt and cost and is
// stored as-is. Passwords over 72 bytes are rejected because bcrypt would
// silently truncate them.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks plaintext against a stored hash in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if hash == "" {
		return ErrInvalidPassword
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
