package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/models"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrProfileDisabled is returned when the provider permanently rejects a
// profile (gone, private, or banned). The account is marked disabled and
// never collected again.
var ErrProfileDisabled = errors.New("collect: profile disabled by provider")

type Client struct {
	http *resty.Client
}

// NewClient builds the content-listing API client. Auth is OAuth2 client
// credentials; the token source refreshes transparently.
func NewClient(cfg *config.Config) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ContentAPIClientID,
		ClientSecret: cfg.ContentAPIClientSecret,
		TokenURL:     cfg.ContentAPITokenURL,
	}

	rc := resty.NewWithClient(cc.Client(context.Background())).
		SetBaseURL(cfg.ContentAPIBaseURL).
		SetTimeout(cfg.ContentAPITimeout).
		SetRetryCount(3).
		SetHeader("Accept", "application/json")

	return &Client{http: rc}
}

// ListPosts fetches the latest post metadata for one profile.
func (c *Client) ListPosts(ctx context.Context, username string, limit int) ([]models.CollectedPost, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("username", username).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/v1/profiles/posts")
	if err != nil {
		return nil, fmt.Errorf("list posts for %s: %w", username, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return nil, ErrProfileDisabled
	default:
		return nil, fmt.Errorf("list posts for %s: unexpected status %d", username, resp.StatusCode())
	}

	return parsePosts(resp.Body())
}

func parsePosts(body []byte) ([]models.CollectedPost, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("collect: invalid response body")
	}

	var posts []models.CollectedPost
	items := gjson.GetBytes(body, "items")
	items.ForEach(func(_, item gjson.Result) bool {
		code := item.Get("code").String()
		if code == "" {
			return true
		}
		posts = append(posts, models.CollectedPost{
			Code:     code,
			OwnerID:  item.Get("owner.id").String(),
			Username: item.Get("owner.username").String(),
			Caption:  item.Get("caption").String(),
			AudioURL: item.Get("audio_url").String(),
			VideoURL: item.Get("video_url").String(),
			Likes:    item.Get("stats.likes").Int(),
			Comments: item.Get("stats.comments").Int(),
			Views:    item.Get("stats.views").Int(),
			Plays:    item.Get("stats.plays").Int(),
			PostedAt: item.Get("posted_at").Time(),
			Raw:      []byte(item.Raw),
		})
		return true
	})
	return posts, nil
}
