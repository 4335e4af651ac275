// Package hostaway talks to the Hostaway public API (v1).
package hostaway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"guest_reviews/internal/adapters/upstream"
	"guest_reviews/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.hostaway.com/v1"
	queryTimeLayout = "2006-01-02T15:04:05"
)

type Client struct {
	base string
	f    *upstream.Fetcher
}

// envelope is the common Hostaway response shape.
type envelope struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Result  []map[string]any `json:"result"`
}

// New returns a client authorized with the OAuth2 client-credentials flow when an
// account id is given, or with the API key as a static bearer token otherwise.
func New(base, accountID, apiKey string, rps int, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("hostaway: API key is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")

	opts := []upstream.Option{upstream.WithHeader("Cache-Control", "no-cache")}
	if accountID != "" {
		cc := clientcredentials.Config{
			ClientID:     accountID,
			ClientSecret: apiKey,
			TokenURL:     base + "/accessTokens",
			Scopes:       []string{"general"},
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		// token requests get their own bounded client
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		opts = append(opts, upstream.WithHTTPClient(cc.Client(tokenCtx)))
	} else {
		opts = append(opts, upstream.WithHeader("Authorization", "Bearer "+apiKey))
	}

	return &Client{base: base, f: upstream.New("hostaway", rps, timeout, opts...)}, nil
}

func (c *Client) GetReviews(ctx context.Context, q domain.ReviewsQuery) ([]map[string]any, error) {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.ListingID != nil && *q.ListingID != "" {
		v.Set("listingId", *q.ListingID)
	}
	if q.StartDate != nil {
		v.Set("startDate", q.StartDate.UTC().Format(queryTimeLayout))
	}
	if q.EndDate != nil {
		v.Set("endDate", q.EndDate.UTC().Format(queryTimeLayout))
	}
	u := c.base + "/reviews"
	if enc := v.Encode(); enc != "" {
		u += "?" + enc
	}
	return c.list(ctx, "reviews", u)
}

func (c *Client) GetListings(ctx context.Context) ([]map[string]any, error) {
	return c.list(ctx, "listings", c.base+"/listings")
}

func (c *Client) list(ctx context.Context, endpoint, u string) ([]map[string]any, error) {
	var env envelope
	if err := c.f.Get(ctx, endpoint, u, &env); err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return nil, fmt.Errorf("hostaway %s: %w", endpoint, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("hostaway %s: %w: %w", endpoint, domain.ErrUpstreamUnavailable, err)
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("hostaway %s: %w: status %q: %s", endpoint, domain.ErrUpstreamUnavailable, env.Status, env.Message)
	}
	if env.Result == nil {
		return []map[string]any{}, nil
	}
	return env.Result, nil
}
