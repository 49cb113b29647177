package auth

import (
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// secretSize is the raw entropy of a generated secret (160 bits, RFC 4226).
const secretSize = 20

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TOTPConfig holds TOTP parameters shared by enrollment and verification
type TOTPConfig struct {
	Period uint // Time step in seconds
	Skew   uint // Accepted steps either side of the current one
}

// TOTPManager handles TOTP secret generation, provisioning and validation
type TOTPManager struct {
	period uint
	skew   uint
}

// NewTOTPManager creates a new TOTP manager. A zero period falls back to 30s.
// Skew is taken as given, so zero accepts only the current step.
func NewTOTPManager(cfg TOTPConfig) *TOTPManager {
	if cfg.Period == 0 {
		cfg.Period = 30
	}

	return &TOTPManager{
		period: cfg.Period,
		skew:   cfg.Skew,
	}
}

// GenerateSecret creates a new random base32 TOTP secret
func (tm *TOTPManager) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "zkvault",
		AccountName: "enrollment",
		SecretSize:  secretSize,
		Period:      tm.period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	return key.Secret(), nil
}

// ProvisioningURI formats the otpauth:// URI an authenticator app enrolls from.
// The output is fully determined by its inputs.
func (tm *TOTPManager) ProvisioningURI(secret, accountName, issuer string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Secret:      raw,
		Period:      tm.period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build provisioning URI: %w", err)
	}

	return key.URL(), nil
}

// Verify reports whether code is valid for secret at the given instant.
// Malformed input yields false, never an error.
func (tm *TOTPManager) Verify(secret, code string, at time.Time) bool {
	if !isSixDigits(code) {
		return false
	}
	if _, err := decodeSecret(secret); err != nil {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    tm.period,
		Skew:      tm.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return valid && err == nil
}

// GenerateCode returns the code for secret at the given instant
func (tm *TOTPManager) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    tm.period,
		Skew:      tm.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	if normalized == "" {
		return nil, fmt.Errorf("empty TOTP secret")
	}

	raw, err := b32NoPadding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid TOTP secret encoding: %w", err)
	}

	return raw, nil
}

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
