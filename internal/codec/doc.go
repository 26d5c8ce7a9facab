// Package codec converts escrow domain records to and from protobuf
// structpb.Struct values.
//
// The same Struct shape is persisted (as protojson) by the ledger stores and
// carried as the request/response message of the gRPC transport, so a package
// looks identical on disk and on the wire.
package codec
