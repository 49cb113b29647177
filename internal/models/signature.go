package models

// Factor identifies one of the two independent OTP secret / signing key pairs.
type Factor int

const (
	FactorOne Factor = iota + 1
	FactorTwo
)

// Factors lists every factor in response order.
var Factors = []Factor{FactorOne, FactorTwo}

// String returns the factor's key in the signing response.
func (f Factor) String() string {
	switch f {
	case FactorOne:
		return "signed_message_one"
	case FactorTwo:
		return "signed_message_two"
	default:
		return "signed_message_unknown"
	}
}

// SigningRequest is a single sign invocation. Empty codes count as absent.
type SigningRequest struct {
	Username  string
	RequestID string
	CodeOne   string
	CodeTwo   string
	ClientIP  string
}

// Code returns the submitted OTP code for a factor.
func (r SigningRequest) Code(f Factor) string {
	switch f {
	case FactorOne:
		return r.CodeOne
	case FactorTwo:
		return r.CodeTwo
	default:
		return ""
	}
}

// SignatureResult is one personal-message signature decomposed into its parts.
type SignatureResult struct {
	Message string `json:"message"`
	MsgHash string `json:"msg_hash"`
	V       int    `json:"v"`
	R       string `json:"r"`
	S       string `json:"s"`
}

// SignedMessages holds the signature produced for each verified factor.
type SignedMessages struct {
	One *SignatureResult
	Two *SignatureResult
}

// Set records the result for a factor.
func (m *SignedMessages) Set(f Factor, result *SignatureResult) {
	switch f {
	case FactorOne:
		m.One = result
	case FactorTwo:
		m.Two = result
	}
}

// Get returns the result for a factor, or nil.
func (m *SignedMessages) Get(f Factor) *SignatureResult {
	switch f {
	case FactorOne:
		return m.One
	case FactorTwo:
		return m.Two
	default:
		return nil
	}
}

// Len counts the factors that produced a signature.
func (m *SignedMessages) Len() int {
	n := 0
	if m.One != nil {
		n++
	}
	if m.Two != nil {
		n++
	}
	return n
}
