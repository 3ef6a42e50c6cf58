// Password hashing for admin credentials.
//
// WHY BCRYPT?
// bcrypt is deliberately slow, generates a random salt per hash and embeds
// the salt and cost in its output, so no separate salt column is needed:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version

package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor (~250ms per hash on a modern server).
const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests. Cost 4 makes tests fast without changing the logic under test.
type PasswordService struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests use bcrypt.MinCost (4); production keeps the default. Costs outside
// bcrypt's range fall back to the default.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// Returns an error if the plaintext is longer than 72 bytes. bcrypt would
// silently ignore everything after byte 72, so we refuse instead.
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

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// bcrypt compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyUnknown spends the same work as Verify for a username that does not
// exist, then reports a mismatch. Without it a login for an unknown user
// returns ~250ms faster than a wrong password, which leaks which usernames
// exist.
func (p *PasswordService) VerifyUnknown(plaintext string) error {
	p.dummyOnce.Do(func() {
		// The dummy password is never a valid login; only the cost matters.
		p.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), p.cost)
	})
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
	return ErrPasswordMismatch
}
