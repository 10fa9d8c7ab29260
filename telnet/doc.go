// Package telnet provides the network variant of the relay Connector.
//
// It exchanges line-oriented commands with a device over a raw TCP stream
// (telnet-style, without option negotiation), detecting end-of-response by
// prompt matching. Use [NewConnectionConfig] to build a configuration and
// [NewConnection] to create a [relay.Connector] from it.
package telnet
