// Package server hosts AgentWire agents behind an HTTP endpoint that
// streams run events as Server-Sent Events.
//
// Each agent implements the Agent interface and emits events through an
// Emitter, which enforces the run lifecycle state machine and folds state
// events into a per-run state store before anything reaches the wire. One
// POST request is one run; concurrent requests reusing a runId are
// rejected with 409 Conflict.
package server
