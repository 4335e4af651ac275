// Package google reads place reviews from the Google Places web service (JSON API).
package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"guest_reviews/internal/adapters/upstream"
	"guest_reviews/internal/domain"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

type Client struct {
	base string
	key  string
	f    *upstream.Fetcher
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("google places: API key is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		f:    upstream.New("google_places", rps, timeout),
	}, nil
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Name    string           `json:"name"`
		Reviews []map[string]any `json:"reviews"`
	} `json:"result"`
}

type searchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

// GetPlaceReviews returns the raw reviews of a place. Each review is tagged with
// place_id and, when known, place_name.
func (c *Client) GetPlaceReviews(ctx context.Context, placeID, lang string) ([]map[string]any, error) {
	if lang == "" {
		lang = "en"
	}
	v := url.Values{}
	v.Set("place_id", placeID)
	v.Set("fields", "name,reviews,rating,user_ratings_total")
	v.Set("key", c.key)
	v.Set("language", lang)

	var resp detailsResponse
	if err := c.f.Get(ctx, "details", c.base+"/details/json?"+v.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("google details: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	if err := statusErr("details", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(resp.Result.Reviews))
	for _, r := range resp.Result.Reviews {
		if r == nil {
			continue
		}
		r["place_id"] = placeID
		if resp.Result.Name != "" {
			r["place_name"] = resp.Result.Name
		}
		out = append(out, r)
	}
	return out, nil
}

// SearchPlace resolves a free-text query to the first matching place id.
func (c *Client) SearchPlace(ctx context.Context, query string) (string, error) {
	v := url.Values{}
	v.Set("query", query)
	v.Set("key", c.key)

	var resp searchResponse
	if err := c.f.Get(ctx, "textsearch", c.base+"/textsearch/json?"+v.Encode(), &resp); err != nil {
		return "", fmt.Errorf("google textsearch: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	if err := statusErr("textsearch", resp.Status, resp.ErrorMessage); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].PlaceID == "" {
		return "", fmt.Errorf("google textsearch: %w", domain.ErrNotFound)
	}
	return resp.Results[0].PlaceID, nil
}

var errStatus = errors.New("google places status")

func statusErr(endpoint, status, msg string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND", "INVALID_REQUEST":
		return fmt.Errorf("google %s: %w: %s", endpoint, domain.ErrNotFound, status)
	}
	return fmt.Errorf("google %s: %w: %w %s: %s", endpoint, domain.ErrUpstreamUnavailable, errStatus, status, msg)
}
