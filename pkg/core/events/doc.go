// Package events defines the AgentWire protocol event taxonomy.
//
// Events are the unit of communication between an agent backend and a
// front-end client. The set of event types is closed and versioned: each
// wire discriminator maps to exactly one concrete Go type, and payloads
// with an unrecognized discriminator decode to RawEvent so newer
// producers remain readable by older consumers.
//
// The package also contains the run lifecycle state machine (RunTracker),
// which enforces the legal sequencing of events within a single run:
// RUN_STARTED first, balanced start/end pairs for streaming message and
// tool-call ids, and exactly one terminal event.
//
// Basic usage:
//
//	event := events.NewTextMessageContentEvent("msg-1", "Hello")
//	data, err := event.ToJSON()
//	...
//	decoded, err := events.EventFromJSON(data)
package events
