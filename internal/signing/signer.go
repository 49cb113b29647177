package signing

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// componentSize is the fixed width of the r and s components in bytes
const componentSize = 32

// recoveryOffset turns a raw recovery id (0/1) into the legacy v value (27/28)
const recoveryOffset = 27

// Signer signs personal messages with a single validated private key
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner parses a hex private key, with or without a 0x prefix. Malformed
// hex, wrong length and out-of-range scalars fail with models.ErrInvalidKey.
func NewSigner(hexKey string) (*Signer, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"), "0X")
	if len(trimmed) != 2*componentSize {
		return nil, fmt.Errorf("%w: expected %d hex characters, got %d", models.ErrInvalidKey, 2*componentSize, len(trimmed))
	}

	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidKey, err)
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the checksummed Ethereum address of the signing key
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign hashes message with the personal-message prefix and signs it
func (s *Signer) Sign(message string) (*models.SignatureResult, error) {
	if s == nil || !validScalar(s.key) {
		return nil, models.ErrInvalidKey
	}

	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	r := new(big.Int).SetBytes(sig[:componentSize])
	sv := new(big.Int).SetBytes(sig[componentSize : 2*componentSize])

	return &models.SignatureResult{
		Message: message,
		MsgHash: hexutil.Encode(hash),
		V:       int(sig[crypto.RecoveryIDOffset]) + recoveryOffset,
		R:       EncodeComponent(r),
		S:       EncodeComponent(sv),
	}, nil
}

// EncodeComponent left-pads value to 32 big-endian bytes and hex-encodes it with 0x
func EncodeComponent(value *big.Int) string {
	if value == nil {
		value = new(big.Int)
	}
	return hexutil.Encode(common.LeftPadBytes(value.Bytes(), componentSize))
}

// RecoverAddress returns the address that produced result
func RecoverAddress(result *models.SignatureResult) (common.Address, error) {
	hash, err := hexutil.Decode(result.MsgHash)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid msg_hash: %w", err)
	}
	if want := accounts.TextHash([]byte(result.Message)); !bytes.Equal(hash, want) {
		return common.Address{}, fmt.Errorf("msg_hash does not match message")
	}

	r, err := hexutil.Decode(result.R)
	if err != nil || len(r) != componentSize {
		return common.Address{}, fmt.Errorf("invalid r component")
	}
	s, err := hexutil.Decode(result.S)
	if err != nil || len(s) != componentSize {
		return common.Address{}, fmt.Errorf("invalid s component")
	}
	if result.V != recoveryOffset && result.V != recoveryOffset+1 {
		return common.Address{}, fmt.Errorf("invalid v %d", result.V)
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, r)
	copy(sig[componentSize:], s)
	sig[crypto.RecoveryIDOffset] = byte(result.V - recoveryOffset)

	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

func validScalar(key *ecdsa.PrivateKey) bool {
	if key == nil || key.D == nil {
		return false
	}
	return key.D.Sign() > 0 && key.D.Cmp(crypto.S256().Params().N) < 0
}
