// Package core provides the shared request and configuration types of the
// AgentWire protocol: the RunAgentInput envelope that starts a run, tool
// and context declarations, and the error types common to client and
// server packages.
package core
