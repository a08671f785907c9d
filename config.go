package twitter

// ClientConfig holds all configuration for the search client.
type ClientConfig struct {
	// BearerToken authorizes app-only requests on the default transport.
	BearerToken string

	// OAuth1 switches the client to user-context signed requests when complete.
	OAuth1 OAuth1Credentials

	// BaseURL overrides the v1.1 API root.
	// Default: https://api.twitter.com/1.1/
	BaseURL string

	// DefaultProxy is the proxy URL for the default transport.
	DefaultProxy string

	// ProfileIndex picks the browser profile (TLS fingerprint and User-Agent)
	// of the default transport.
	ProfileIndex int

	// DisableJitter turns off the random pre-request delay of the default transport.
	DisableJitter bool

	// MaxConcurrentFetches bounds the number of fetches running at once.
	MaxConcurrentFetches int

	// Transport replaces the default transport entirely.
	Transport Transport

	// Dispatcher runs completion callbacks. Default: one goroutine owned by
	// the client that runs callbacks in submission order.
	Dispatcher Dispatcher

	// MetricsHook is called once per fetch for external metrics collection.
	// endpoint is the request endpoint, posts the number of parsed posts,
	// success is false for transport failures.
	MetricsHook func(endpoint string, posts int, success bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = twitterAPIURL
	}
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = 4
	}
	if cfg.ProfileIndex < 0 {
		cfg.ProfileIndex = 0
	}
}
