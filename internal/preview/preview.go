// Package preview fetches link metadata for cosmetic url cards in the
// timeline. Everything here is fire-and-forget: a failure yields no preview
// and must never block or fail a post.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ToyoKou0322/my-sns-app/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// microlink-style envelope
type apiResponse struct {
	Status string `json:"status"`
	Data   struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Image       struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"data"`
}

type Fetcher struct {
	Endpoint string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewFetcher(endpoint string, timeout time.Duration, rdb *redis.Client, cacheTTL time.Duration) *Fetcher {
	return &Fetcher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Redis:    rdb,
		CacheTTL: cacheTTL,
	}
}

// Fetch resolves metadata for a url, going through the redis cache first.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Metadata, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("unsupported url: %q", rawURL)
	}

	cacheKey := "preview:" + rawURL
	if cached, appErr := utils.GetCacheData[Metadata](ctx, f.Redis, cacheKey); appErr == nil && cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Endpoint+"?url="+url.QueryEscape(rawURL), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata endpoint returned %d", resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	if envelope.Status != "success" {
		return nil, fmt.Errorf("metadata lookup failed: %s", envelope.Status)
	}

	meta := &Metadata{
		Title:       envelope.Data.Title,
		Description: envelope.Data.Description,
		ImageURL:    envelope.Data.Image.URL,
	}

	if err := utils.SetCacheData(ctx, f.Redis, cacheKey, meta, f.CacheTTL); err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("preview: cache write failed")
	}

	return meta, nil
}
