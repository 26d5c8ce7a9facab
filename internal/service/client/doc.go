// Package client connects the escrow-cli commands to the escrow server.
//
// It resolves the server address and the signing identity from flags, the
// settings file and the local user, and renders service results for the
// terminal.
package client
