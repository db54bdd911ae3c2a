// Package auth verifies the demo credential and tracks authenticated
// sessions. Credentials are injected, never baked into the checkout flow.
package auth

import "crypto/subtle"

type Credentials struct {
	Username string
	Password string
}

type Verifier struct {
	creds Credentials
}

func NewVerifier(creds Credentials) *Verifier {
	return &Verifier{creds: creds}
}

func (v *Verifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.creds.Password)) == 1
	return userOK && passOK
}
