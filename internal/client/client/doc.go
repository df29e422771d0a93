// Package client contains the client side of the relay protocol.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) mirroring
//     the five relay requests: Signup, Users, PublicKey, Send and Read.
//  2. A TCP implementation (see TCPClient) that opens one connection per
//     request, writes a single frame, reads a single response frame and
//     closes the connection, as the server expects.
//  3. A gRPC health probe (see CheckHealth) for the operator endpoint.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrServerError, ErrUnexpectedResponse.
// The server never says why a request failed; ErrServerError is all a
// client learns.
//
// Concurrency & Contexts
//
// TCPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and deadlines.
package client
