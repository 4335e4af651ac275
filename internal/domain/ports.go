package domain

import (
	"context"
	"time"
)

type ReviewStore interface {
	// Write paths
	Replace(rs []Review)
	UpdateStatus(id string, status Status, response *string) (Review, error)
	ReplaceProperties(ps []Property)

	// Read paths
	List() []Review
	Get(id string) (Review, error)
	Properties() []Property
	Property(id string) (Property, error)
	Version() uint64
	Loaded() bool
	LoadedAt() time.Time
}

// ReviewSourceClient is the upstream property-management API.
type ReviewSourceClient interface {
	GetReviews(ctx context.Context, q ReviewsQuery) ([]map[string]any, error)
	GetListings(ctx context.Context) ([]map[string]any, error)
}

type PlacesClient interface {
	GetPlaceReviews(ctx context.Context, placeID, lang string) ([]map[string]any, error)
	SearchPlace(ctx context.Context, query string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type ReviewsQuery struct {
	ListingID *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

type PageQuery struct {
	Offset int
	Limit  int // 0 = no limit
}
