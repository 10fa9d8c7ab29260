package registry

import (
	"time"

	"github.com/arloliu/go-relay/relay"
	"github.com/arloliu/go-relay/serial"
	"github.com/arloliu/go-relay/telnet"
)

// Registry defaults applied when neither an override nor the stored
// configuration supplies a value.
const (
	defaultBaudRate = 9600
	defaultTimeout  = 10 * time.Second
)

var defaultPrompts = []string{">"}

// Overrides is a set of caller-supplied parameter overrides. Zero values
// mean "no override"; a non-zero value wins over the stored configuration.
type Overrides struct {
	// Host overrides the telnet host.
	Host string
	// TelnetPort overrides the TCP port for telnet connections.
	TelnetPort int
	// Port overrides the serial device identifier.
	Port string
	// BaudRate overrides the serial line speed.
	BaudRate int
	// Timeout overrides the per-command timeout.
	Timeout time.Duration
	// Prompts overrides the prompt pattern list.
	Prompts []string
}

// resolved holds the merged connection parameters for one resolution.
type resolved struct {
	host       string
	telnetPort int
	port       string
	baudRate   int
	timeout    time.Duration
	prompts    []string
}

// Resolve merges a known connection with the given override layers, later
// layers winning, and validates that the result names a transport.
//
// It returns a configuration error when the id is unknown or when the
// merged parameters carry neither a host nor a serial port. No transport is
// constructed here.
func (r *Registry) Resolve(id string, overrides ...Overrides) (*KnownConnection, relay.Variant, error) {
	conn, ok := r.Get(id)
	if !ok {
		return nil, "", &relay.ConfigError{Field: "id", Reason: "unknown connection " + id}
	}

	res := merge(conn, overrides)

	switch {
	case res.host != "":
		return conn, relay.VariantTelnet, nil
	case res.port != "":
		return conn, relay.VariantSerial, nil
	default:
		return nil, "", &relay.ConfigError{
			Field:  "connection",
			Reason: "connection " + id + " has neither host nor port",
		}
	}
}

// CreateConnector resolves the known connection with the given override
// layers and builds the matching connector variant. The connector is
// returned disconnected; the caller drives Connect, SendCommand and
// Disconnect.
func (r *Registry) CreateConnector(id string, overrides ...Overrides) (relay.Connector, error) {
	conn, ok := r.Get(id)
	if !ok {
		return nil, &relay.ConfigError{Field: "id", Reason: "unknown connection " + id}
	}

	res := merge(conn, overrides)

	switch {
	case res.host != "":
		return r.createTelnet(conn, res)
	case res.port != "":
		return r.createSerial(conn, res)
	default:
		return nil, &relay.ConfigError{
			Field:  "connection",
			Reason: "connection " + id + " has neither host nor port",
		}
	}
}

// CreateDefaultConnector builds a connector for the registry's default
// connection.
func (r *Registry) CreateDefaultConnector(overrides ...Overrides) (relay.Connector, error) {
	if r.defaultID == "" {
		return nil, &relay.ConfigError{Field: "default_connection", Reason: "no default connection configured"}
	}

	return r.CreateConnector(r.defaultID, overrides...)
}

func (r *Registry) createTelnet(conn *KnownConnection, res resolved) (relay.Connector, error) {
	opts := []telnet.ConnOption{
		telnet.WithDefaultTimeout(res.timeout),
		telnet.WithLogger(r.logger),
	}

	if res.telnetPort > 0 {
		opts = append(opts, telnet.WithPort(res.telnetPort))
	}

	if len(res.prompts) > 0 {
		opts = append(opts, telnet.WithPrompts(res.prompts))
	}

	cfg, err := telnet.NewConnectionConfig(res.host, opts...)
	if err != nil {
		return nil, err
	}

	r.logger.Info("creating telnet connector",
		"id", conn.ID, "name", conn.Name, "host", res.host, "port", cfg.Port())

	return telnet.NewConnection(cfg)
}

func (r *Registry) createSerial(conn *KnownConnection, res resolved) (relay.Connector, error) {
	cfg, err := serial.NewConnectionConfig(res.port,
		serial.WithBaudRate(res.baudRate),
		serial.WithDefaultTimeout(res.timeout),
		serial.WithPrompts(res.prompts),
		serial.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}

	r.logger.Info("creating serial connector",
		"id", conn.ID, "name", conn.Name, "port", res.port, "baudrate", res.baudRate)

	return serial.NewConnection(cfg)
}

// merge applies override layers over the stored configuration, later layers
// winning, and fills registry defaults for anything still unset.
func merge(conn *KnownConnection, overrides []Overrides) resolved {
	res := resolved{
		host:       conn.Host,
		telnetPort: conn.TelnetPort,
		port:       conn.Port,
		baudRate:   conn.BaudRate,
		timeout:    conn.Timeout(),
		prompts:    append([]string(nil), conn.Prompts...),
	}

	for _, ov := range overrides {
		if ov.Host != "" {
			res.host = ov.Host
		}
		if ov.TelnetPort > 0 {
			res.telnetPort = ov.TelnetPort
		}
		if ov.Port != "" {
			res.port = ov.Port
		}
		if ov.BaudRate > 0 {
			res.baudRate = ov.BaudRate
		}
		if ov.Timeout > 0 {
			res.timeout = ov.Timeout
		}
		if len(ov.Prompts) > 0 {
			res.prompts = append([]string(nil), ov.Prompts...)
		}
	}

	if res.baudRate == 0 {
		res.baudRate = defaultBaudRate
	}
	if res.timeout == 0 {
		res.timeout = defaultTimeout
	}
	if len(res.prompts) == 0 {
		res.prompts = append([]string(nil), defaultPrompts...)
	}

	return res
}
