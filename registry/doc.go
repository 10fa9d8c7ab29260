// Package registry resolves named device connection configurations into
// relay connectors.
//
// A registry is loaded from a YAML or JSON file holding known connections
// (transport parameters plus descriptive metadata), optional connection
// profiles (named override presets), and a default connection id. Callers
// resolve a known connection, optionally layered with overrides, into a
// ready-to-use [relay.Connector]:
//
//	reg, err := registry.Load("known_connections.yaml")
//	conn, err := reg.CreateConnector("sel-351", registry.Overrides{BaudRate: 19200})
//
// Override resolution follows explicit-wins ordering: a per-call override
// value wins, else the stored configuration's value, else a hard-coded
// default (port 23 for telnet, 9600 baud, 10-second timeout, ">" prompt).
// Missing mandatory fields after resolution surface a configuration error
// before any transport is constructed.
package registry
