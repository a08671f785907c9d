package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go-twitter-search/textrange"
)

// User is the author of a post.
type User struct {
	ScreenName      string   `json:"screen_name"`
	DisplayName     string   `json:"name"`
	ID              string   `json:"id_str"`
	Verified        bool     `json:"verified"`
	ProfileImageURL *url.URL `json:"-"`
}

func (u *User) String() string {
	s := fmt.Sprintf("@%s (%s)", u.ScreenName, u.DisplayName)
	if u.Verified {
		s += " ✅"
	}
	return s
}

// MarshalJSON renders ProfileImageURL as a plain string.
func (u *User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		*plain
		ProfileImageURL string `json:"profile_image_url,omitempty"`
	}{(*plain)(u), urlString(u.ProfileImageURL)})
}

// Media is an attached photo.
type Media struct {
	URL         *url.URL `json:"-"`
	AspectRatio float64  `json:"aspect_ratio"` // width / height
}

func (m *Media) String() string {
	return fmt.Sprintf("%s (aspect ratio = %g)", m.URL, m.AspectRatio)
}

// MarshalJSON renders URL as a plain string.
func (m *Media) MarshalJSON() ([]byte, error) {
	type plain Media
	return json.Marshal(struct {
		*plain
		URL string `json:"media_url_https"`
	}{(*plain)(m), urlString(m.URL)})
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

// Mention is a hashtag, URL or user reference inside a post's text.
// Range indexes the runes of the owning Post.Text.
type Mention struct {
	Keyword string          `json:"keyword"`
	Range   textrange.Range `json:"range"`
}

func (m Mention) String() string {
	return fmt.Sprintf("%s (%d, %d)", m.Keyword, m.Range.Start, m.Range.End-1)
}

// Post is a single tweet from a search result.
type Post struct {
	ID           string    `json:"id_str"`
	Text         string    `json:"text"`
	Author       *User     `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
	Media        []*Media  `json:"media"`
	Hashtags     []Mention `json:"hashtags"`
	URLs         []Mention `json:"urls"`
	UserMentions []Mention `json:"user_mentions"`
}

func (p *Post) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n%s\n", p.Author, p.CreatedAt.Format(time.RFC3339), p.Text)
	fmt.Fprintf(&b, "hashtags: %v\nurls: %v\nuser_mentions: %v\nid: %s", p.Hashtags, p.URLs, p.UserMentions, p.ID)
	return b.String()
}

// Cursor is the pagination position captured from one search response.
// MinID pages towards older results, MaxID towards newer ones.
type Cursor struct {
	MinID string
	MaxID string
}
