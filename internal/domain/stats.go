package domain

// PropertyStats is derived per property and never stored.
type PropertyStats struct {
	PropertyID         string      `json:"property_id"`
	PropertyName       string      `json:"property_name"`
	TotalReviews       int         `json:"total_reviews"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
	RecentReviews      []Review    `json:"recent_reviews"`
}

type OverallStats struct {
	TotalReviews    int     `json:"total_reviews"`
	AverageRating   float64 `json:"average_rating"`
	PendingReviews  int     `json:"pending_reviews"`
	ApprovedReviews int     `json:"approved_reviews"`
}

type RatingBucket struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SourceCount struct {
	Source Source `json:"source"`
	Count  int    `json:"count"`
}

type SentimentShare struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Analytics is the lighter dashboard view; JSON keys follow the dashboard client.
type Analytics struct {
	RatingDistribution []RatingBucket   `json:"ratingDistribution"`
	SourceDistribution []SourceCount    `json:"sourceDistribution"`
	Sentiment          []SentimentShare `json:"sentiment"`
}

// SyncResult summarizes one upstream load.
type SyncResult struct {
	SyncedAt        string     `json:"synced_at"`
	Origin          string     `json:"origin"`
	TotalFetched    int        `json:"total_fetched"`
	TotalNormalized int        `json:"total_normalized"`
	PropertyID      *string    `json:"property_id"`
	DateRange       *DateRange `json:"date_range,omitempty"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
