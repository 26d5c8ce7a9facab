// Package config defines the settings shared by the escrow server and CLI and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the gRPC address, the ledger store backend, the
// custody identity, the expiry accounting mode and the API key credentials.
package config
