package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Fetch queues req on the worker pool and later calls onComplete through the
// client's Dispatcher, never on the worker itself.
//
// onComplete receives the parsed posts (possibly empty) and a nil error, or
// nil posts and an error matching ErrTransport when no response arrived. The
// request's cursor is updated before onComplete runs. The returned error is
// non-nil only when the fetch could not be queued.
func (c *Client) Fetch(ctx context.Context, req *Request, onComplete func(posts []*Post, err error)) error {
	err := c.pool.Go(func() {
		posts, err := c.FetchPosts(ctx, req)
		c.dispatcher.Dispatch(func() { onComplete(posts, err) })
	})
	if err != nil {
		return fmt.Errorf("queue fetch: %w", err)
	}
	return nil
}

// FetchPosts performs one request synchronously, captures its cursor and
// returns the parsed posts.
func (c *Client) FetchPosts(ctx context.Context, req *Request) ([]*Post, error) {
	body, err := c.transport.Get(ctx, req.endpoint, req.params)
	if err != nil {
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		slog.Warn("fetch failed", slog.String("endpoint", req.endpoint), slog.Any("error", err))
		c.recordFetch(req.endpoint, 0, false)
		return nil, err
	}

	posts := ParseFeed(body)
	if len(posts) == 0 && !isNull(body) {
		if p, err := ParsePost(body); err == nil {
			posts = append(posts, p)
		}
	}
	if posts == nil {
		posts = []*Post{}
	}

	if meta, ok := ParseSearchMetadata(body); ok {
		req.cursor.Capture(meta)
	} else if !json.Valid(body) {
		slog.Warn("malformed payload", slog.String("endpoint", req.endpoint), slog.String("body", truncateBytes(body, 200)))
	}

	c.recordFetch(req.endpoint, len(posts), true)
	return posts, nil
}

// CollectOlder walks older pages starting at req until maxPosts posts are
// collected, a page comes back empty, or no older page is known.
// maxPosts <= 0 means no limit.
func (c *Client) CollectOlder(ctx context.Context, req *Request, maxPosts int) ([]*Post, error) {
	var posts []*Post

	for {
		select {
		case <-ctx.Done():
			return posts, ctx.Err()
		default:
		}

		batch, err := c.FetchPosts(ctx, req)
		if err != nil {
			return posts, err
		}
		posts = append(posts, batch...)

		if len(batch) == 0 || (maxPosts > 0 && len(posts) >= maxPosts) {
			break
		}
		next, ok := req.RequestForOlder()
		if !ok || next == req {
			break
		}
		req = next
	}
	if maxPosts > 0 && len(posts) > maxPosts {
		posts = posts[:maxPosts]
	}
	return posts, nil
}
