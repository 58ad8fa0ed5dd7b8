package stream

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/c360/storystream/errors"
	"github.com/c360/storystream/metric"
	"github.com/c360/storystream/pkg/backoff"
)

// DefaultEndpointPath is the server path the stream is published on.
const DefaultEndpointPath = "/api/events/stream"

// Defaults applied by Config.withDefaults for zero-valued fields.
const (
	DefaultMaxEvents        = 50
	DefaultHeartbeatTimeout = 60 * time.Second
)

// DefaultEndpoint is the endpoint used when none is configured.
var DefaultEndpoint = "http://localhost:8000" + DefaultEndpointPath

// Config controls a Subscription.
//
// The zero value is not usable directly; start from DefaultConfig and
// override what you need. A Config with Enabled=false builds a Subscription
// that never opens a transport.
type Config struct {
	// Name labels this subscription in logs and metrics. Generated when empty.
	Name string `json:"name"`

	// Endpoint is the absolute stream URL. The scheme selects the transport:
	// http/https dial a server-sent-events stream, ws/wss a websocket.
	Endpoint string `json:"endpoint"`

	// Enabled gates whether a connection is attempted at all.
	Enabled bool `json:"enabled"`

	// MaxEvents bounds the in-memory event log (drop-oldest beyond it).
	MaxEvents int `json:"max_events"`

	// MaxRetries is the number of reconnection attempts before giving up.
	MaxRetries int `json:"max_retries"`

	// InitialRetryDelay seeds the exponential backoff schedule.
	InitialRetryDelay time.Duration `json:"initial_retry_delay"`

	// MaxRetryDelay caps the backoff growth (before jitter).
	MaxRetryDelay time.Duration `json:"max_retry_delay"`

	// HeartbeatTimeout forces a reconnect after this much frame silence.
	HeartbeatTimeout time.Duration `json:"heartbeat_timeout"`

	// OnDecisionEvent, when set, is invoked synchronously for every
	// decision-class event after it has entered the log.
	OnDecisionEvent DecisionHandler `json:"-"`

	// Logger receives structured connection and drop logs. Defaults to
	// slog.Default().
	Logger *slog.Logger `json:"-"`

	// Metrics, when set, enables Prometheus metrics for this subscription.
	Metrics *metric.MetricsRegistry `json:"-"`
}

// DefaultConfig returns an enabled configuration with production defaults.
func DefaultConfig() Config {
	bo := backoff.DefaultConfig()
	return Config{
		Endpoint:          DefaultEndpoint,
		Enabled:           true,
		MaxEvents:         DefaultMaxEvents,
		MaxRetries:        bo.MaxRetries,
		InitialRetryDelay: bo.InitialDelay,
		MaxRetryDelay:     bo.MaxDelay,
		HeartbeatTimeout:  DefaultHeartbeatTimeout,
	}
}

// withDefaults fills zero fields. Enabled is always taken as given.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Name == "" {
		c.Name = "feed-" + uuid.NewString()[:8]
	}
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	if c.MaxEvents == 0 {
		c.MaxEvents = def.MaxEvents
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.InitialRetryDelay == 0 {
		c.InitialRetryDelay = def.InitialRetryDelay
	}
	if c.MaxRetryDelay == 0 {
		c.MaxRetryDelay = def.MaxRetryDelay
	}
	if c.HeartbeatTimeout == 0 {
		c.HeartbeatTimeout = def.HeartbeatTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate checks the configuration after defaults have been applied.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint %q: %v", errors.ErrInvalidConfig, c.Endpoint, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint %q has no host", errors.ErrInvalidConfig, c.Endpoint)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%w: endpoint scheme %q is not supported", errors.ErrInvalidConfig, u.Scheme)
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("%w: MaxEvents cannot be negative", errors.ErrInvalidConfig)
	}
	if c.HeartbeatTimeout < 0 {
		return fmt.Errorf("%w: HeartbeatTimeout cannot be negative", errors.ErrInvalidConfig)
	}
	if err := c.backoff().Validate(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return nil
}

// backoff maps the retry fields onto a backoff configuration.
func (c Config) backoff() backoff.Config {
	return backoff.Config{
		InitialDelay: c.InitialRetryDelay,
		MaxDelay:     c.MaxRetryDelay,
		MaxRetries:   c.MaxRetries,
	}
}
