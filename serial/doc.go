// Package serial provides the serial-port variant of the relay Connector.
//
// It exchanges line-oriented commands with a device attached to a physical
// or virtual serial port, detecting end-of-response by prompt matching.
// Port access is handled by go.bug.st/serial. Use [NewConnectionConfig] to
// build a configuration and [NewConnection] to create a [relay.Connector]
// from it.
package serial
