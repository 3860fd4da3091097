// cinechat/services/assets/assets.go
package assets

import (
	httputils "cinechat/cinechat/utils/http"
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PosterCache mirrors successfully looked-up poster URLs into object
// storage. A nil cache disables mirroring.
type PosterCache interface {
	Mirror(ctx context.Context, title, imageURL string) error
}

// Client performs the per-recommendation asset lookups against the
// backend: image by title and trailer by title.
type Client struct {
	baseURL string
	cache   PosterCache
}

func NewClient(baseURL string, cache PosterCache) *Client {
	return &Client{baseURL: baseURL, cache: cache}
}

func (c *Client) LookupImage(ctx context.Context, title string) (string, error) {
	var payload struct {
		ImageURL string `json:"image_url"`
	}
	endpoint := fmt.Sprintf("%s/get_image/%s", c.baseURL, url.PathEscape(title))
	if err := httputils.GetJSON(endpoint, &payload); err != nil {
		return "", err
	}
	return payload.ImageURL, nil
}

func (c *Client) LookupTrailer(ctx context.Context, title string) (string, error) {
	var payload struct {
		TrailerURL string `json:"trailer_url"`
	}
	endpoint := fmt.Sprintf("%s/get_trailer/%s", c.baseURL, url.PathEscape(title))
	if err := httputils.GetJSON(endpoint, &payload); err != nil {
		return "", err
	}
	return payload.TrailerURL, nil
}

// Enrich issues both lookups concurrently and merges whichever succeeded
// into a copy of rec. A recommendation without a title passes through
// unchanged; a failed or empty lookup leaves the prior field value.
func (c *Client) Enrich(ctx context.Context, rec types.Recommendation) types.Recommendation {
	if rec.Title == "" {
		return rec
	}

	var imageURL, trailerURL string
	var g errgroup.Group
	g.Go(func() error {
		u, err := c.LookupImage(ctx, rec.Title)
		if err != nil {
			logging.ErrorLogger.Error("image lookup failed",
				zap.String("title", rec.Title), zap.Error(err))
			return nil
		}
		imageURL = u
		return nil
	})
	g.Go(func() error {
		u, err := c.LookupTrailer(ctx, rec.Title)
		if err != nil {
			logging.ErrorLogger.Error("trailer lookup failed",
				zap.String("title", rec.Title), zap.Error(err))
			return nil
		}
		trailerURL = u
		return nil
	})
	_ = g.Wait()

	if imageURL != "" {
		rec.Image = imageURL
		if c.cache != nil {
			if err := c.cache.Mirror(ctx, rec.Title, imageURL); err != nil {
				logging.ErrorLogger.Error("poster mirror failed",
					zap.String("title", rec.Title), zap.Error(err))
			}
		}
	}
	if trailerURL != "" {
		rec.Trailer = trailerURL
	}
	return rec
}

// EnrichAll runs Enrich across all recommendations concurrently and joins
// on the whole batch. Per-item failures never abort the batch.
func (c *Client) EnrichAll(ctx context.Context, recs []types.Recommendation) []types.Recommendation {
	out := make([]types.Recommendation, len(recs))
	var g errgroup.Group
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			out[i] = c.Enrich(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
