package signing

import (
	"fmt"

	"github.com/BradenHooton/zkvault/internal/models"
)

// KeyRing is the signing context: one validated Signer per factor.
// It is built once at startup and passed to the orchestrator explicitly.
type KeyRing struct {
	one *Signer
	two *Signer
}

// NewKeyRing validates both keys. Any failure wraps models.ErrInvalidKey.
func NewKeyRing(keyOne, keyTwo string) (*KeyRing, error) {
	one, err := NewSigner(keyOne)
	if err != nil {
		return nil, fmt.Errorf("PRIVATE_KEY_ONE: %w", err)
	}

	two, err := NewSigner(keyTwo)
	if err != nil {
		return nil, fmt.Errorf("PRIVATE_KEY_TWO: %w", err)
	}

	return &KeyRing{one: one, two: two}, nil
}

// Signer returns the signer bound to a factor, or nil for an unknown factor
func (k *KeyRing) Signer(f models.Factor) *Signer {
	switch f {
	case models.FactorOne:
		return k.one
	case models.FactorTwo:
		return k.two
	default:
		return nil
	}
}
