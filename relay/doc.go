// Package relay implements the core command/response transport protocol for
// line-oriented instruments such as protective relays.
//
// The protocol is a synchronous request/response exchange: a text command is
// written to the device, and the response is read incrementally until the
// device prints a readiness prompt. The prompt is the device's authoritative
// end-of-response signal; response length is not known a priori, so neither
// fixed-length nor newline framing can delimit an exchange.
//
// The package provides:
//
//   - [Transport]: a capability abstraction over a raw byte channel,
//     implemented by the serial and telnet packages.
//   - [PromptMatcher]: compiles a set of prompt patterns and decides whether
//     a prompt terminates the accumulating response buffer.
//   - [Session]: the framer that drives a Transport for each command (clear
//     stale input, write, poll-read until prompt match or timeout).
//   - [Connector]: the uniform capability set (connect, disconnect, send
//     command, status) implemented once per transport variant.
//
// A Connector, and the Session inside it, supports at most one in-flight
// command; concurrent SendCommand calls on the same instance are serialized.
package relay
