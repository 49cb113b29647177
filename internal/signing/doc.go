// Package signing builds the canonical message a request authorizes and signs
// it with server-held secp256k1 keys using the Ethereum personal-message
// convention ("\x19Ethereum Signed Message:\n" + len + message, keccak256).
//
// Keys are parsed and validated once, when a KeyRing is constructed at process
// start. A Signer still refuses to sign with unusable key material.
package signing
