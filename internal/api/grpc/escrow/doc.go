// Package escrow implements the gRPC transport for the escrow service.
//
// Messages are google.protobuf.Struct values, so the service is declared by
// hand instead of generated. Domain failures cross the wire as status errors
// carrying an ErrorInfo detail with the failure reason, and FromStatus turns
// them back into the same domain errors on the client side.
package escrow
