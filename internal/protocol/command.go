package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned when a payload is not a known command token.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a stable, case-sensitive token carried as a message payload.
type Command string

const (
	// Session commands (Terminal -> Coordinator, echoed back as acks).
	LoginAdmin Command = "login-admin"
	LoginUser  Command = "login-user"
	Login      Command = "login"
	Logout     Command = "logout"

	// Rental requests (Terminal -> Coordinator).
	ReceivedOpenRequest  Command = "received-open-request"
	ReceivedCloseRequest Command = "received-close-request"

	// Handshake acknowledgements (Vehicle -> Coordinator).
	AckOpenRequest  Command = "ack-open-request"
	AckCloseRequest Command = "ack-close-request"

	// Vehicle directives (Coordinator -> Vehicle).
	SendUnlock  Command = "send-unlock"
	SendLock    Command = "send-lock"
	RequestInfo Command = "request-info"
	Deactivate  Command = "deactivate"
	Activate    Command = "activate"

	// PaymentFailed notifies the terminal of a rejected payment (Coordinator -> Terminal).
	PaymentFailed Command = "payment-failed"
)

var commands = map[Command]struct{}{
	LoginAdmin:           {},
	LoginUser:            {},
	Login:                {},
	Logout:               {},
	ReceivedOpenRequest:  {},
	ReceivedCloseRequest: {},
	AckOpenRequest:       {},
	AckCloseRequest:      {},
	SendUnlock:           {},
	SendLock:             {},
	RequestInfo:          {},
	Deactivate:           {},
	Activate:             {},
	PaymentFailed:        {},
}

// ParseCommand decodes a payload into a Command. Surrounding whitespace is
// ignored; the token itself is matched exactly.
func ParseCommand(payload []byte) (Command, error) {
	c := Command(strings.TrimSpace(string(payload)))
	if _, ok := commands[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, string(payload))
	}
	return c, nil
}

// Bytes returns the wire form of the command.
func (c Command) Bytes() []byte {
	return []byte(c)
}

func (c Command) String() string {
	return string(c)
}

// IsAdminCommand reports whether c is a maintenance command an admin session
// may relay to the vehicle.
func (c Command) IsAdminCommand() bool {
	return c == RequestInfo || c == Deactivate || c == Activate
}
