// Package encoding groups the wire framings that carry AgentWire events
// across a process boundary: Server-Sent Events (subpackage sse) for HTTP
// transports and newline-delimited JSON (subpackage ndjson) for everything
// else. Both carry exactly one encoded event per frame and share the same
// resilience contract: frames may arrive split at arbitrary read
// boundaries, and a frame that fails the event codec is dropped with a
// logged error rather than terminating the stream.
package encoding
