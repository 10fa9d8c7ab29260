package registry

import (
	"time"

	"github.com/arloliu/go-relay/relay"
)

// KnownConnection is a stored device connection configuration: the
// transport parameters needed to build a connector, plus descriptive
// metadata for operator-facing listings.
type KnownConnection struct {
	// ID is the registry key of the connection. Populated at load time.
	ID string `mapstructure:"-"`

	// Name is a human-readable connection name.
	Name string `mapstructure:"name"`
	// Description describes the device or its role.
	Description string `mapstructure:"description"`
	// DeviceType classifies the device, e.g. "RELAY".
	DeviceType string `mapstructure:"device_type"`
	// Model is the device model identifier.
	Model string `mapstructure:"model"`
	// Location describes where the device is installed.
	Location string `mapstructure:"location"`
	// CommonCommands lists frequently used commands for this device.
	CommonCommands []string `mapstructure:"common_commands"`

	// TimeoutSeconds is the stored per-command timeout, in seconds.
	TimeoutSeconds float64 `mapstructure:"timeout"`

	// Port is the serial device identifier, e.g. "COM1". For telnet
	// connections the same file key carries the TCP port and is folded
	// into TelnetPort at load time.
	Port string `mapstructure:"port"`
	// BaudRate is the serial line speed.
	BaudRate int `mapstructure:"baudrate"`

	// Host is the telnet host. A non-empty host marks the connection as
	// the telnet variant.
	Host string `mapstructure:"host"`
	// TelnetPort is the TCP port for telnet connections.
	TelnetPort int `mapstructure:"telnet_port"`

	// Prompts holds the prompt patterns for this device. Empty means the
	// registry default.
	Prompts []string `mapstructure:"prompts"`
}

// Variant reports the transport variant implied by the stored fields:
// telnet when a host is present, serial when a port is present, and the
// empty Variant when neither is.
func (k *KnownConnection) Variant() relay.Variant {
	switch {
	case k.Host != "":
		return relay.VariantTelnet
	case k.Port != "":
		return relay.VariantSerial
	default:
		return ""
	}
}

// Timeout returns the stored per-command timeout as a duration, or zero
// when the configuration does not set one.
func (k *KnownConnection) Timeout() time.Duration {
	if k.TimeoutSeconds <= 0 {
		return 0
	}

	return time.Duration(k.TimeoutSeconds * float64(time.Second))
}

// Profile is a named override preset stored alongside known connections.
// It is applied as an override layer below explicit per-call overrides.
type Profile struct {
	// Description describes when to use the profile.
	Description string `mapstructure:"description"`

	Host           string   `mapstructure:"host"`
	TelnetPort     int      `mapstructure:"telnet_port"`
	Port           string   `mapstructure:"port"`
	BaudRate       int      `mapstructure:"baudrate"`
	TimeoutSeconds float64  `mapstructure:"timeout"`
	Prompts        []string `mapstructure:"prompts"`
}

// Overrides converts the profile into an override layer.
func (p *Profile) Overrides() Overrides {
	ov := Overrides{
		Host:       p.Host,
		TelnetPort: p.TelnetPort,
		Port:       p.Port,
		BaudRate:   p.BaudRate,
		Prompts:    append([]string(nil), p.Prompts...),
	}

	if p.TimeoutSeconds > 0 {
		ov.Timeout = time.Duration(p.TimeoutSeconds * float64(time.Second))
	}

	return ov
}
