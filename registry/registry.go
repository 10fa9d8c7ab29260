package registry

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spf13/viper"

	"github.com/arloliu/go-relay/logger"
	"github.com/arloliu/go-relay/relay"
)

// Registry holds the known device connections and profiles loaded from a
// configuration file. It is safe for concurrent use: API handlers resolve
// connections from it without external locking.
type Registry struct {
	logger    logger.Logger
	conns     *xsync.MapOf[string, *KnownConnection]
	profiles  *xsync.MapOf[string, *Profile]
	defaultID string
}

// Option customizes a Registry created by Load.
type Option func(*Registry)

// WithRegistryLogger sets the logger for the registry.
func WithRegistryLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Load reads the registry configuration from the given file. The format is
// inferred from the file extension (YAML and JSON are both supported).
//
// The file layout:
//
//	default_connection: sel-351
//	known_connections:
//	  sel-351:
//	    name: Feeder relay
//	    host: 10.0.0.5
//	    port: 23
//	    timeout: 10
//	connection_profiles:
//	  slow-link:
//	    timeout: 30
func Load(path string, opts ...Option) (*Registry, error) {
	r := &Registry{
		logger:   logger.GetLogger(),
		conns:    xsync.NewMapOf[string, *KnownConnection](),
		profiles: xsync.NewMapOf[string, *Profile](),
	}

	for _, opt := range opts {
		opt(r)
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, &relay.ConfigError{Field: "config", Reason: fmt.Sprintf("read %s: %v", path, err)}
	}

	conns := map[string]*KnownConnection{}
	if err := v.UnmarshalKey("known_connections", &conns); err != nil {
		return nil, &relay.ConfigError{Field: "known_connections", Reason: err.Error()}
	}

	for id, conn := range conns {
		conn.ID = id
		normalizeTelnetPort(conn)
		r.conns.Store(id, conn)
	}

	profiles := map[string]*Profile{}
	if err := v.UnmarshalKey("connection_profiles", &profiles); err != nil {
		return nil, &relay.ConfigError{Field: "connection_profiles", Reason: err.Error()}
	}

	for name, profile := range profiles {
		r.profiles.Store(name, profile)
	}

	r.defaultID = v.GetString("default_connection")

	r.logger.Info("registry loaded",
		"path", path,
		"connections", r.conns.Size(),
		"profiles", r.profiles.Size(),
		"default", r.defaultID)

	return r, nil
}

// normalizeTelnetPort folds the shared "port" file key into TelnetPort for
// telnet connections, where the key carries a TCP port number rather than a
// serial device identifier.
func normalizeTelnetPort(conn *KnownConnection) {
	if conn.Host == "" || conn.TelnetPort != 0 || conn.Port == "" {
		return
	}

	if n, err := strconv.Atoi(conn.Port); err == nil {
		conn.TelnetPort = n
		conn.Port = ""
	}
}

// Get returns the known connection with the given id.
func (r *Registry) Get(id string) (*KnownConnection, bool) {
	return r.conns.Load(id)
}

// List returns all known connections ordered by id.
func (r *Registry) List() []*KnownConnection {
	conns := make([]*KnownConnection, 0, r.conns.Size())
	r.conns.Range(func(_ string, conn *KnownConnection) bool {
		conns = append(conns, conn)

		return true
	})

	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })

	return conns
}

// DefaultID returns the configured default connection id, or an empty
// string when none is set.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Profile returns the named connection profile.
func (r *Registry) Profile(name string) (*Profile, bool) {
	return r.profiles.Load(name)
}
