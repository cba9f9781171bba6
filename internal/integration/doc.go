// Package integration exercises the terminal, the coordinator and the vehicle
// together over a shared broker. It has no non-test code.
package integration
