package inscriptions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxPreviewBytes caps how much inscription content is pulled for display.
const maxPreviewBytes = 64 * 1024

// Preview is fetched inscription content, trimmed for terminal display.
type Preview struct {
	ContentType string
	Body        []byte
}

// PreviewCache fetches inscription content from the network content host and
// keeps a bounded LRU of recent previews so scrolling the list stays cheap.
type PreviewCache struct {
	cache  *lru.Cache[string, Preview]
	client *http.Client
}

// NewPreviewCache creates a cache holding up to size previews.
func NewPreviewCache(size int) (*PreviewCache, error) {
	c, err := lru.New[string, Preview](size)
	if err != nil {
		return nil, err
	}
	return &PreviewCache{
		cache:  c,
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Fetch returns the preview for url, from cache when possible.
func (p *PreviewCache) Fetch(ctx context.Context, url string) (Preview, error) {
	if cached, ok := p.cache.Get(url); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Preview{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Preview{}, fmt.Errorf("fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Preview{}, fmt.Errorf("fetch preview: unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return Preview{}, fmt.Errorf("fetch preview: %w", err)
	}

	preview := Preview{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	p.cache.Add(url, preview)
	return preview, nil
}
