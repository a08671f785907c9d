package twitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportGet(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"statuses":[]}`))
	}))
	defer srv.Close()

	tr := &HTTPTransport{BaseURL: srv.URL}
	body, err := tr.Get(context.Background(), SearchTweets, map[string]string{ParamQuery: "#go lang", ParamCount: "5"})
	require.NoError(t, err)

	assert.Equal(t, `{"statuses":[]}`, string(body))
	assert.Equal(t, "/search/tweets.json", gotPath)
	assert.Equal(t, "count=5&q=%23go+lang", gotQuery)
	assert.Equal(t, "application/json", gotAccept)
}

func TestHTTPTransportErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		rateLimited bool
		code        int
	}{
		{"rate limited", 429, `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`, true, 88},
		{"bad auth", 400, `{"errors":[{"code":215,"message":"Bad Authentication data."}]}`, false, 215},
		{"plain 503", 503, `Service Unavailable`, false, 0},
		{"error body on 200", 200, `{"errors":[{"code":130,"message":"Over capacity"}]}`, false, 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tr := &HTTPTransport{BaseURL: srv.URL}
			body, err := tr.Get(context.Background(), SearchTweets, nil)
			assert.Nil(t, body)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransport)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.rateLimited, apiErr.RateLimited())
		})
	}
}

func TestHTTPTransportUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	tr := &HTTPTransport{BaseURL: srv.URL}
	_, err := tr.Get(context.Background(), SearchTweets, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestOAuth1TransportSignsRequests(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tr := NewOAuth1Transport(srv.URL, OAuth1Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	})
	_, err := tr.Get(context.Background(), SearchTweets, map[string]string{ParamQuery: "go"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(auth, "OAuth "), auth)
	assert.Contains(t, auth, `oauth_consumer_key="ck"`)
	assert.Contains(t, auth, `oauth_token="at"`)
	assert.Contains(t, auth, "oauth_signature=")
}

func TestOAuth1CredentialsComplete(t *testing.T) {
	assert.False(t, OAuth1Credentials{ConsumerKey: "a"}.Complete())
	assert.True(t, OAuth1Credentials{"a", "b", "c", "d"}.Complete())
}

func TestNewClientPicksOAuth1Transport(t *testing.T) {
	c, err := NewClient(ClientConfig{OAuth1: OAuth1Credentials{"a", "b", "c", "d"}})
	require.NoError(t, err)
	defer c.Close()

	tr, ok := c.transport.(*HTTPTransport)
	require.True(t, ok)
	assert.Equal(t, twitterAPIURL, tr.BaseURL)
}

func TestStealthTransportGet(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		switch r.URL.Query().Get(ParamQuery) {
		case "limited":
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`))
		case "expired":
			w.Write([]byte(`{"errors":[{"code":89,"message":"Invalid or expired token."}]}`))
		default:
			w.Write([]byte(`{"statuses":[]}`))
		}
	}))
	defer srv.Close()

	tr, err := NewStealthTransport(ClientConfig{BaseURL: srv.URL, BearerToken: "tok", DisableJitter: true})
	require.NoError(t, err)

	body, err := tr.Get(context.Background(), SearchTweets, map[string]string{ParamQuery: "go", ParamCount: "3"})
	require.NoError(t, err)
	assert.Equal(t, `{"statuses":[]}`, string(body))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/search/tweets.json", gotPath)
	assert.Equal(t, "count=3&q=go", gotQuery)

	tests := []struct {
		query       string
		status      int
		code        int
		rateLimited bool
	}{
		{"limited", 429, 88, true},
		{"expired", 200, 89, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			body, err := tr.Get(context.Background(), SearchTweets, map[string]string{ParamQuery: tt.query})
			assert.Nil(t, body)
			assert.ErrorIs(t, err, ErrTransport)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.rateLimited, apiErr.RateLimited())
		})
	}
}

func TestStealthTransportCanceledContext(t *testing.T) {
	tr, err := NewStealthTransport(ClientConfig{BaseURL: "http://127.0.0.1:1", DisableJitter: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Get(ctx, SearchTweets, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestAPIHeaders(t *testing.T) {
	h := apiHeaders("tok", "")
	assert.Equal(t, "Bearer tok", h["authorization"])
	assert.Equal(t, defaultUserAgent, h["user-agent"])

	_, ok := apiHeaders("", "ua")["authorization"]
	assert.False(t, ok)
}
