package cumulus

import (
	"time"

	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/domain/ports"
)

// Option modifies a Driver before the first connection.
type Option func(*Driver)

// WithUsername sets the login user.
func WithUsername(username string) Option {
	return func(d *Driver) { d.cfg.Username = username }
}

// WithPassword sets the login password.
func WithPassword(password string) Option {
	return func(d *Driver) { d.cfg.Password = password }
}

// WithPort overrides the transport port.
func WithPort(port int) Option {
	return func(d *Driver) { d.cfg.Port = port }
}

// WithTransport selects "ssh" (default) or "telnet".
func WithTransport(transport string) Option {
	return func(d *Driver) { d.cfg.Transport = transport }
}

// WithConnectTimeout bounds session establishment.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cfg.ConnectTimeout = timeout }
}

// WithCommandTimeout bounds each command round trip.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cfg.CommandTimeout = timeout }
}

// WithSudo elevates the session after login. An empty password reuses the
// login password.
func WithSudo(sudoPassword string) Option {
	return func(d *Driver) {
		d.cfg.UseSudo = true
		d.cfg.SudoPassword = sudoPassword
	}
}

// WithSNMPCommunity enables the SNMP forwarding-table fallback.
func WithSNMPCommunity(community string) Option {
	return func(d *Driver) { d.cfg.SNMPCommunity = community }
}

// WithDialect pins the command dialect ("nvue" or "legacy"), skipping
// detection at open.
func WithDialect(dialect string) Option {
	return func(d *Driver) { d.cfg.Dialect = dialect }
}

// WithRetrieveDetails enables the slow per-interface flap-time lookup on the
// legacy dialect.
func WithRetrieveDetails() Option {
	return func(d *Driver) { d.cfg.RetrieveDetails = true }
}

// WithForce answers configuration apply prompts automatically.
func WithForce() Option {
	return func(d *Driver) { d.force = true }
}

// WithLogger installs a structured logger. The default logs nothing.
func WithLogger(logger ports.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithConfig replaces the whole connection config, keeping the host given to
// NewDriver. Intended for inventory-driven callers.
func WithConfig(cfg entities.DeviceConfig) Option {
	return func(d *Driver) {
		host := d.cfg.Host
		d.cfg = cfg
		d.cfg.Host = host
	}
}
