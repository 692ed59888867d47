package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MasterPassword is the shared secondary credential required to confirm
// destructive dashboard actions. The plaintext is never held after
// construction, only the bcrypt hash.
type MasterPassword struct {
	hash []byte
}

func NewMasterPassword(secret string) (*MasterPassword, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), 10)
	if err != nil {
		return nil, fmt.Errorf("error encrypting master password: %w", err)
	}
	return &MasterPassword{hash: hash}, nil
}

// Check reports whether the submitted secret matches. A mismatch is not an
// error, it is a regular negative verification.
func (m *MasterPassword) Check(secret string) bool {
	return bcrypt.CompareHashAndPassword(m.hash, []byte(secret)) == nil
}
