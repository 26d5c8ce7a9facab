// Package common holds helpers shared by several services.
//
// It provides a gRPC client for the escrow service that attaches the caller's
// credentials and applies call timeouts, a helper that detects the local user
// as the default identity, and a process scan used as a single-instance guard.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
