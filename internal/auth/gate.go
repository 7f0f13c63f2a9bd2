package auth

import (
	"qrstats/internal/domain"
)

// Gate authorizes stats reads. Each check is independent; there is no
// lockout or attempt counting.
type Gate struct {
	hasher Hasher
}

// NewGate creates a gate that verifies credentials with hasher
func NewGate(hasher Hasher) *Gate {
	return &Gate{hasher: hasher}
}

// Authorize reports whether credential grants access to record.
// Open records accept anything; gated records need a non-empty matching credential.
func (g *Gate) Authorize(record *domain.TargetRecord, credential string) bool {
	if !record.IsProtected() {
		return true
	}
	if credential == "" {
		return false
	}
	return g.hasher.Compare(*record.PasswordHash, credential)
}

// HashPassword returns the stored form of password, or nil when no password was given
func (g *Gate) HashPassword(password string) (*string, error) {
	if password == "" {
		return nil, nil
	}

	hash, err := g.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}
