// Command tweetsearch runs a v1.1 tweet search and prints the posts as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	twitter "github.com/anatolykoptev/go-twitter-search"
)

var (
	info = color.New(color.FgCyan).SprintFunc()
	warn = color.New(color.FgYellow).SprintFunc()
	fail = color.New(color.FgRed).SprintFunc()
)

type options struct {
	count      int
	resultType string
	geocode    string
	maxPosts   int
	follow     time.Duration

	bearerToken    string
	consumerKey    string
	consumerSecret string
	accessToken    string
	accessSecret   string
	proxy          string
	baseURL        string
	concurrency    int

	logLevel string
	jsonLogs bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:          "tweetsearch QUERY",
		Short:        "Search tweets and print them as JSON lines",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(logConfig{Level: level, Output: cmd.ErrOrStderr(), JSONFormat: opts.jsonLogs}))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := rootCmd.Flags()
	f.IntVar(&opts.count, "count", 0, "Results per page (0 uses the API default)")
	f.StringVar(&opts.resultType, "result-type", "", "recent or popular")
	f.StringVar(&opts.geocode, "geocode", "", "Restrict to lat,lng,radius in km, e.g. 37.78,-122.4,5km")
	f.IntVar(&opts.maxPosts, "max", 100, "Stop walking older pages after this many posts (0 for no limit)")
	f.DurationVar(&opts.follow, "follow", 0, "Poll for newer posts at this interval after the initial pages")

	f.StringVar(&opts.bearerToken, "bearer-token", envOr("TWITTER_BEARER_TOKEN", ""), "App-only bearer token")
	f.StringVar(&opts.consumerKey, "consumer-key", envOr("TWITTER_CONSUMER_KEY", ""), "OAuth1 consumer key")
	f.StringVar(&opts.consumerSecret, "consumer-secret", envOr("TWITTER_CONSUMER_SECRET", ""), "OAuth1 consumer secret")
	f.StringVar(&opts.accessToken, "access-token", envOr("TWITTER_ACCESS_TOKEN", ""), "OAuth1 access token")
	f.StringVar(&opts.accessSecret, "access-secret", envOr("TWITTER_ACCESS_TOKEN_SECRET", ""), "OAuth1 access token secret")
	f.StringVar(&opts.proxy, "proxy", envOr("TWITTER_PROXY", ""), "Proxy URL for bearer requests")
	f.StringVar(&opts.baseURL, "base-url", envOr("TWITTER_API_URL", ""), "Override the v1.1 API root")
	f.IntVar(&opts.concurrency, "concurrency", 2, "Maximum concurrent fetches")

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Log as JSON")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", fail("error:"), err)
		os.Exit(1)
	}
}

func searchOptions(opts options) ([]twitter.SearchOption, error) {
	so := []twitter.SearchOption{twitter.WithCount(opts.count)}
	switch twitter.ResultType(opts.resultType) {
	case "":
	case twitter.ResultTypeRecent, twitter.ResultTypePopular:
		so = append(so, twitter.WithResultType(twitter.ResultType(opts.resultType)))
	default:
		return nil, fmt.Errorf("unknown result type %q", opts.resultType)
	}
	if opts.geocode != "" {
		var lat, lng, radius float64
		if _, err := fmt.Sscanf(strings.TrimSuffix(opts.geocode, "km"), "%g,%g,%g", &lat, &lng, &radius); err != nil {
			return nil, fmt.Errorf("geocode %q: %w", opts.geocode, err)
		}
		so = append(so, twitter.WithGeocode(lat, lng, radius))
	}
	return so, nil
}

func run(ctx context.Context, query string, opts options, out, errOut io.Writer) error {
	so, err := searchOptions(opts)
	if err != nil {
		return err
	}

	// Completion callbacks run on this goroutine, inside the follow loop.
	callbacks := make(chan func(), 1)
	cfg := twitter.ClientConfig{
		BearerToken: opts.bearerToken,
		OAuth1: twitter.OAuth1Credentials{
			ConsumerKey:    opts.consumerKey,
			ConsumerSecret: opts.consumerSecret,
			AccessToken:    opts.accessToken,
			AccessSecret:   opts.accessSecret,
		},
		BaseURL:              opts.baseURL,
		DefaultProxy:         opts.proxy,
		MaxConcurrentFetches: opts.concurrency,
		Dispatcher: twitter.DispatcherFunc(func(fn func()) {
			select {
			case callbacks <- fn:
			case <-ctx.Done():
			}
		}),
		MetricsHook: func(endpoint string, posts int, success bool) {
			slog.Debug("fetch done", slog.String("endpoint", endpoint), slog.Int("posts", posts), slog.Bool("success", success))
		},
	}

	client, err := twitter.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	enc := json.NewEncoder(out)
	req := twitter.NewSearchRequest(query, so...)

	posts, err := client.CollectOlder(ctx, req, opts.maxPosts)
	for _, p := range posts {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("write post: %w", err)
		}
	}
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}
	fmt.Fprintf(errOut, "%s %d posts for %q\n", info("found"), len(posts), query)

	if opts.follow <= 0 {
		return nil
	}
	return follow(ctx, client, req, opts.follow, callbacks, enc, errOut)
}

// follow polls for posts newer than req's latest page until ctx is done.
func follow(ctx context.Context, client *twitter.Client, req *twitter.Request, interval time.Duration,
	callbacks <-chan func(), enc *json.Encoder, errOut io.Writer) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	inflight := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-callbacks:
			fn()
		case <-ticker.C:
			if inflight {
				continue
			}
			next, ok := req.RequestForNewer()
			if !ok {
				slog.Debug("no newer cursor yet", slog.String("request", req.String()))
				continue
			}
			inflight = true
			err := client.Fetch(ctx, next, func(posts []*twitter.Post, err error) {
				inflight = false
				if err != nil {
					fmt.Fprintf(errOut, "%s %v\n", warn("poll failed:"), err)
					return
				}
				for _, p := range posts {
					if err := enc.Encode(p); err != nil {
						slog.Error("write post", slog.Any("error", err))
					}
				}
				if next.Cursor().MaxID != "" {
					req = next
				}
			})
			if err != nil {
				return err
			}
		}
	}
}
