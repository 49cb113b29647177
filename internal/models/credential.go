package models

import "time"

// UserCredential holds the two independent TOTP secrets bound to a username.
// It is written once on first registration and never overwritten.
type UserCredential struct {
	ID        string    `json:"id" dynamodbav:"id,omitempty"`
	Username  string    `json:"username" dynamodbav:"username"`
	SecretOne string    `json:"secret_one" dynamodbav:"secret_one"`
	SecretTwo string    `json:"secret_two" dynamodbav:"secret_two"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at,omitempty"`
}

// Secret returns the secret bound to a factor
func (c *UserCredential) Secret(f Factor) string {
	switch f {
	case FactorOne:
		return c.SecretOne
	case FactorTwo:
		return c.SecretTwo
	default:
		return ""
	}
}

// Enrollment is what a registration hands back to the client.
// Only provisioning URIs leave the system, never the raw secrets.
type Enrollment struct {
	URIOne string
	URITwo string
}
