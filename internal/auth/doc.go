// Package auth answers "did this identity consent to the call?".
//
// Transports verify a caller's API key against bcrypt hashes (Credentials)
// and attach the proven identity to the request context (WithSigner). The
// contract then asks an Authorizer to require a specific identity's consent.
package auth
