package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BradenHooton/zkvault/internal/models"
)

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=255"`
}

// RegisterResponse carries the two provisioning URIs, plus QR images on request
type RegisterResponse struct {
	QRURIOne string `json:"qr_uri_one"`
	QRURITwo string `json:"qr_uri_two"`
	QRPNGOne string `json:"qr_png_one,omitempty"` // PNG data URL, ?format=png only
	QRPNGTwo string `json:"qr_png_two,omitempty"`
}

// SignRequest is the body of POST /sign. Both codes are optional.
type SignRequest struct {
	Username     string  `json:"username" validate:"required,max=255"`
	RequestID    string  `json:"request_id" validate:"required,max=255"`
	OTPSecretOne OTPCode `json:"otp_secret_one"`
	OTPSecretTwo OTPCode `json:"otp_secret_two"`
}

// SignResponse maps each verified factor to its signature
type SignResponse struct {
	SignedMessageOne *models.SignatureResult `json:"signed_message_one,omitempty"`
	SignedMessageTwo *models.SignatureResult `json:"signed_message_two,omitempty"`
}

// SignersResponse lists the address that verifies each factor's signatures
type SignersResponse struct {
	SignerOne string `json:"signer_one"`
	SignerTwo string `json:"signer_two"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// OTPCode is a submitted one-time code. Authenticator codes are often sent
// as JSON numbers, so strings, integers and null are all accepted; null and
// "" both mean absent.
type OTPCode string

func (c *OTPCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = OTPCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("otp code must be a string or integer")
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("otp code must be a string or integer")
	}
	*c = OTPCode(n.String())
	return nil
}
