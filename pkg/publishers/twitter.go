package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const (
	twitterDefaultAPIURL = "https://api.twitter.com/2/tweets"
	twitterTimeout       = 15 * time.Second
	twitterMaxErrBody    = 512
)

// twitterPublisher posts to the v2 create-tweet endpoint with OAuth 1.0a
// user-context signing.
type twitterPublisher struct {
	id      string
	primary bool
	apiURL  string
	client  *http.Client
	log     Logger
}

// newTwitterPublisher builds the signed HTTP client for the configured
// consumer and access credentials.
func newTwitterPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Twitter == nil {
		return nil, fmt.Errorf("publisher %q missing twitter configuration", cfg.ID)
	}

	oauthCfg := oauth1.NewConfig(cfg.Twitter.ConsumerKey, cfg.Twitter.ConsumerSecret)
	token := oauth1.NewToken(cfg.Twitter.AccessToken, cfg.Twitter.AccessTokenSecret)

	client := oauthCfg.Client(oauth1.NoContext, token)
	client.Timeout = twitterTimeout

	apiURL := cfg.Twitter.APIURL
	if apiURL == "" {
		apiURL = twitterDefaultAPIURL
	}

	return &twitterPublisher{
		id:      cfg.ID,
		primary: cfg.PrimaryValue(),
		apiURL:  apiURL,
		client:  client,
		log:     ensureLogger(log),
	}, nil
}

func (p *twitterPublisher) ID() string    { return p.id }
func (p *twitterPublisher) Type() string  { return TypeTwitter }
func (p *twitterPublisher) Primary() bool { return p.primary }

// Publish creates one tweet carrying the event text.
func (p *twitterPublisher) Publish(ctx context.Context, evt Event) error {
	if strings.TrimSpace(evt.Text) == "" {
		return fmt.Errorf("post text is empty")
	}

	payload, err := json.Marshal(map[string]string{"text": evt.Text})
	if err != nil {
		return fmt.Errorf("marshal tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send tweet: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > twitterMaxErrBody {
			snippet = snippet[:twitterMaxErrBody]
		}
		p.log.ErrorObj("twitter publisher send failed", "publisher_twitter_error", map[string]any{
			"status": resp.StatusCode,
			"body":   snippet,
		})
		return fmt.Errorf("tweet rejected with status %d: %s", resp.StatusCode, snippet)
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &created)

	p.log.InfoObj("twitter publisher delivered post", "publisher_twitter_delivery", map[string]any{
		"tweet_id":    created.Data.ID,
		"article_url": evt.ArticleURL,
	})
	return nil
}
