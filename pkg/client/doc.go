// Package client connects to AgentWire servers over HTTP and exposes each
// agent run as an ordered event subscription.
//
// A run is one POST of the run input followed by a Server-Sent Events
// response streaming events until a terminal event or a transport failure.
// The client validates lifecycle ordering as events arrive and surfaces
// violations through the logger without interrupting delivery; only
// transport failures and decode-level stream corruption terminate a
// subscription with an error.
package client
