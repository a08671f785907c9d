package twitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-twitter-search/textrange"
)

// TimeLayout is the created_at format used by the v1.1 API.
const TimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Literal prefixes every recovered mention keyword starts with.
const (
	HashtagPrefix     = "#"
	URLPrefix         = "http"
	UserMentionPrefix = "@"
)

// --- Raw payload types ---
//
// Fields are kept raw so that one malformed value only rejects the smallest
// entity that owns it.

type rawStatus struct {
	User      json.RawMessage `json:"user"`
	Text      json.RawMessage `json:"text"`
	CreatedAt json.RawMessage `json:"created_at"`
	IDStr     json.RawMessage `json:"id_str"`
	Entities  json.RawMessage `json:"entities"`
}

type rawUser struct {
	Name            json.RawMessage `json:"name"`
	ScreenName      json.RawMessage `json:"screen_name"`
	IDStr           json.RawMessage `json:"id_str"`
	Verified        flexBool        `json:"verified"`
	ProfileImageURL json.RawMessage `json:"profile_image_url"`
}

type rawMedia struct {
	MediaURLHTTPS json.RawMessage `json:"media_url_https"`
	Sizes         struct {
		Small struct {
			W json.RawMessage `json:"w"`
			H json.RawMessage `json:"h"`
		} `json:"small"`
	} `json:"sizes"`
}

type rawMention struct {
	Indices json.RawMessage `json:"indices"`
	Text    json.RawMessage `json:"text"`
}

// flexBool accepts JSON booleans, numbers and the strings "true"/"YES"/"1".
// Anything else decodes as false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if json.Unmarshal(data, &v) != nil {
		*b = false
		return nil
	}
	switch x := v.(type) {
	case bool:
		*b = flexBool(x)
	case float64:
		*b = x != 0
	case string:
		ok, err := strconv.ParseBool(x)
		*b = flexBool(err == nil && ok || strings.EqualFold(x, "yes"))
	default:
		*b = false
	}
	return nil
}

// --- Feed ---

// ParseFeed extracts every valid post from a search response.
//
// The payload may be an object holding a "statuses" list, a single post
// object, or a bare list of posts. Records that fail validation are skipped;
// a body that is not JSON yields no posts.
func ParseFeed(body []byte) []*Post {
	records, err := feedRecords(body)
	if err != nil {
		slog.Debug("skip feed", slog.Any("error", err))
		return nil
	}

	posts := make([]*Post, 0, len(records))
	for i, rec := range records {
		p, err := parsePost(rec)
		if err != nil {
			slog.Debug("skip status parse error", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		posts = append(posts, p)
	}
	return posts
}

// feedRecords splits a payload into individual post records.
func feedRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return list, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if raw, ok := obj["statuses"]; ok {
			var list []json.RawMessage
			if err := json.Unmarshal(raw, &list); err == nil {
				return list, nil
			}
		}
		return []json.RawMessage{trimmed}, nil
	}

	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: not JSON", ErrMalformedPayload)
	}
	return nil, fmt.Errorf("%w: unexpected top-level value", ErrMalformedPayload)
}

// --- Post ---

// ParsePost validates a single post record.
func ParsePost(body []byte) (*Post, error) {
	return parsePost(json.RawMessage(body))
}

func parsePost(rec json.RawMessage) (*Post, error) {
	var raw rawStatus
	if err := json.Unmarshal(rec, &raw); err != nil {
		return nil, fmt.Errorf("%w: status: %v", ErrMalformedPayload, err)
	}

	if isNull(raw.User) {
		return nil, missing("post", "user")
	}
	author, err := parseUser(raw.User)
	if err != nil {
		return nil, fmt.Errorf("post author: %w", err)
	}

	text, err := stringField("post", "text", raw.Text)
	if err != nil {
		return nil, err
	}

	created, err := stringField("post", "created_at", raw.CreatedAt)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(TimeLayout, created)
	if err != nil {
		return nil, invalid("post", "created_at", err)
	}

	id, err := stringField("post", "id_str", raw.IDStr)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, invalid("post", "id_str", errors.New("empty"))
	}

	entities := entityLists(raw.Entities)
	runes := []rune(text)

	return &Post{
		ID:           id,
		Text:         text,
		Author:       author,
		CreatedAt:    createdAt,
		Media:        parseMediaList(entities["media"]),
		Hashtags:     parseMentionList(entities["hashtags"], runes, HashtagPrefix),
		URLs:         parseMentionList(entities["urls"], runes, URLPrefix),
		UserMentions: parseMentionList(entities["user_mentions"], runes, UserMentionPrefix),
	}, nil
}

// entityLists decodes the entities object into its per-kind record lists.
// Kinds that are missing or not lists come back empty.
func entityLists(raw json.RawMessage) map[string][]json.RawMessage {
	lists := make(map[string][]json.RawMessage)
	if isNull(raw) {
		return lists
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		slog.Debug("ignore entities", slog.Any("error", err))
		return lists
	}
	for kind, v := range obj {
		var list []json.RawMessage
		if json.Unmarshal(v, &list) == nil {
			lists[kind] = list
		}
	}
	return lists
}

// --- User ---

// ParseUser validates an author record.
func ParseUser(body []byte) (*User, error) {
	return parseUser(json.RawMessage(body))
}

func parseUser(rec json.RawMessage) (*User, error) {
	var raw rawUser
	if err := json.Unmarshal(rec, &raw); err != nil {
		return nil, invalid("user", "", err)
	}

	screenName, err := stringField("user", "screen_name", raw.ScreenName)
	if err != nil {
		return nil, err
	}
	name, err := stringField("user", "name", raw.Name)
	if err != nil {
		return nil, err
	}
	id, err := stringField("user", "id_str", raw.IDStr)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, invalid("user", "id_str", errors.New("empty"))
	}

	u := &User{
		ScreenName:  screenName,
		DisplayName: name,
		ID:          id,
		Verified:    bool(raw.Verified),
	}
	if s, err := stringField("user", "profile_image_url", raw.ProfileImageURL); err == nil && s != "" {
		if img, err := parseAbsoluteURL(s); err == nil {
			u.ProfileImageURL = img
		}
	}
	return u, nil
}

// --- Media ---

// ParseMedia validates one entities.media record.
func ParseMedia(body []byte) (*Media, error) {
	return parseMedia(json.RawMessage(body))
}

func parseMedia(rec json.RawMessage) (*Media, error) {
	var raw rawMedia
	if err := json.Unmarshal(rec, &raw); err != nil {
		return nil, invalid("media", "", err)
	}

	w, err := positiveField("media", "sizes.small.w", raw.Sizes.Small.W)
	if err != nil {
		return nil, err
	}
	h, err := positiveField("media", "sizes.small.h", raw.Sizes.Small.H)
	if err != nil {
		return nil, err
	}
	s, err := stringField("media", "media_url_https", raw.MediaURLHTTPS)
	if err != nil {
		return nil, err
	}
	u, err := parseAbsoluteURL(s)
	if err != nil {
		return nil, invalid("media", "media_url_https", err)
	}
	return &Media{URL: u, AspectRatio: w / h}, nil
}

func parseMediaList(records []json.RawMessage) []*Media {
	media := make([]*Media, 0, len(records))
	for i, rec := range records {
		m, err := parseMedia(rec)
		if err != nil {
			slog.Debug("skip media", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		media = append(media, m)
	}
	return media
}

// --- Mentions ---

// ParseMention validates one hashtag, URL or user mention record and
// recovers its true range in text. prefix is the literal every keyword of
// that kind starts with (HashtagPrefix, URLPrefix or UserMentionPrefix).
func ParseMention(body []byte, text, prefix string) (Mention, error) {
	return parseMention(json.RawMessage(body), []rune(text), prefix)
}

func parseMention(rec json.RawMessage, text []rune, prefix string) (Mention, error) {
	var raw rawMention
	if err := json.Unmarshal(rec, &raw); err != nil {
		return Mention{}, invalid("mention", "", err)
	}

	if isNull(raw.Indices) {
		return Mention{}, missing("mention", "indices")
	}
	var indices []int
	if err := json.Unmarshal(raw.Indices, &indices); err != nil {
		return Mention{}, invalid("mention", "indices", err)
	}
	if len(indices) == 0 {
		return Mention{}, invalid("mention", "indices", errors.New("empty"))
	}
	start, end := indices[0], indices[len(indices)-1]
	if start < 0 || end <= start {
		return Mention{}, invalid("mention", "indices", fmt.Errorf("bad span %d..%d", start, end))
	}

	expected := prefix
	if kw, err := stringField("mention", "text", raw.Text); err == nil {
		expected = prependIfAbsent(kw, prefix)
	}

	r, ok := textrange.ReconcileRunes(text, textrange.Range{Start: start, End: end}, []rune(expected))
	if !ok {
		return Mention{}, fmt.Errorf("%w: %q near %d..%d", ErrReconcile, expected, start, end)
	}
	return Mention{Keyword: r.Slice(text), Range: r}, nil
}

func parseMentionList(records []json.RawMessage, text []rune, prefix string) []Mention {
	mentions := make([]Mention, 0, len(records))
	for i, rec := range records {
		m, err := parseMention(rec, text, prefix)
		if err != nil {
			slog.Debug("skip mention", slog.String("prefix", prefix), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		mentions = append(mentions, m)
	}
	return mentions
}

// --- Field helpers ---

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func stringField(entity, field string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", missing(entity, field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid(entity, field, err)
	}
	return s, nil
}

func positiveField(entity, field string, raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, missing(entity, field)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, invalid(entity, field, err)
	}
	if f <= 0 {
		return 0, invalid(entity, field, fmt.Errorf("%g is not positive", f))
	}
	return f, nil
}

func parseAbsoluteURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("not an absolute URL: %q", s)
	}
	return u, nil
}

func prependIfAbsent(s, prefix string) string {
	if strings.HasPrefix(s, prefix) {
		return s
	}
	return prefix + s
}
