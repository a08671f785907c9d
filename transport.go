package twitter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/dghubble/oauth1"
)

// Transport performs one GET against an API endpoint and returns the raw body.
// A non-nil error means no usable response was received.
type Transport interface {
	Get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error)
}

// encodeQuery builds a sorted query string from params.
func encodeQuery(params map[string]string) string {
	v := make(url.Values, len(params))
	for k, val := range params {
		v.Set(k, val)
	}
	return v.Encode()
}

func requestURL(base, endpoint string, params map[string]string) string {
	u := EndpointURL(base, endpoint)
	if len(params) > 0 {
		u += "?" + encodeQuery(params)
	}
	return u
}

// checkResponse turns HTTP-level and API-level failures into errors.
func checkResponse(status int, body []byte) error {
	if status != http.StatusOK {
		return newAPIError(status, body)
	}
	if class, code, msg := classifyError(body); class != errNone {
		return &APIError{Status: status, Code: code, Message: msg, class: class}
	}
	return nil
}

// --- Stealth transport ---

// StealthTransport sends bearer-authenticated requests through a
// browser-fingerprinted client.
type StealthTransport struct {
	client      *stealth.BrowserClient
	baseURL     string
	bearerToken string
	userAgent   string
	jitter      bool
}

// NewStealthTransport creates the default transport from cfg.
func NewStealthTransport(cfg ClientConfig) (*StealthTransport, error) {
	cfg.defaults()

	profile := stealth.BuiltinProfiles[cfg.ProfileIndex%len(stealth.BuiltinProfiles)]
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
		stealth.WithProfile(profile.TLSProfile),
	}
	if cfg.DefaultProxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.DefaultProxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	if cfg.DefaultProxy != "" {
		slog.Debug("stealth transport via proxy", slog.String("proxy", stealth.MaskProxy(cfg.DefaultProxy)))
	}

	return &StealthTransport{
		client:      bc,
		baseURL:     cfg.BaseURL,
		bearerToken: cfg.BearerToken,
		userAgent:   profile.UserAgent,
		jitter:      !cfg.DisableJitter,
	}, nil
}

// Get implements Transport.
func (t *StealthTransport) Get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	// Anti-fingerprint jitter
	if t.jitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	u := requestURL(t.baseURL, endpoint, params)
	body, _, status, err := t.client.DoWithHeaderOrder("GET", u, apiHeaders(t.bearerToken, t.userAgent), nil, apiHeaderOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, endpoint, err)
	}
	if err := checkResponse(status, body); err != nil {
		return nil, err
	}
	return body, nil
}

// --- net/http transport ---

// HTTPTransport sends requests through a plain *http.Client, typically one
// that signs requests itself such as the OAuth1 client.
type HTTPTransport struct {
	Client  *http.Client
	BaseURL string
}

// OAuth1Credentials are the user-context keys for signed requests.
type OAuth1Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Complete reports whether every key is set.
func (c OAuth1Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// NewOAuth1Transport returns an HTTPTransport that signs every request with creds.
func NewOAuth1Transport(baseURL string, creds OAuth1Credentials) *HTTPTransport {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return &HTTPTransport{
		Client:  config.Client(context.Background(), token),
		BaseURL: baseURL,
	}
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL(t.BaseURL, endpoint, params), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	if err := checkResponse(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}
