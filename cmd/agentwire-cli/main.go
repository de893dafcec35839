// Command agentwire-cli is a developer tool for AgentWire event streams:
// it lints recorded streams, serves a demo agent, and prints live runs
// from a remote endpoint.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
