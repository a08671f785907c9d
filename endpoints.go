package twitter

import "strings"

const (
	twitterAPIURL = "https://api.twitter.com/1.1/"
	jsonExtension = ".json"
)

// SearchTweets is the v1.1 search endpoint.
const SearchTweets = "search/tweets"

// Request parameter names understood by the search endpoint.
const (
	ParamQuery      = "q"
	ParamCount      = "count"
	ParamMaxID      = "max_id"
	ParamSinceID    = "since_id"
	ParamResultType = "result_type"
	ParamGeocode    = "geocode"
)

// ResultType selects which kind of results a search returns.
type ResultType string

const (
	ResultTypeRecent  ResultType = "recent"
	ResultTypePopular ResultType = "popular"
)

// EndpointURL returns the full URL for an endpoint path relative to base.
// The .json extension is appended unless the path already carries it.
func EndpointURL(base, endpoint string) string {
	if base == "" {
		base = twitterAPIURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	endpoint = strings.TrimPrefix(endpoint, "/")
	if !strings.Contains(endpoint, jsonExtension) {
		endpoint += jsonExtension
	}
	return base + endpoint
}
