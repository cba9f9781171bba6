// Package protocol is the contract shared by the terminal, the rental
// coordinator and the vehicle controller: command tokens, topic roles,
// vehicle state labels and the telemetry payload.
//
// Every component imports this package instead of spelling tokens itself.
package protocol

// Version identifies the revision of the contract.
const Version = "v1"
