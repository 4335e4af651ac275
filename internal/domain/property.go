package domain

type Property struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Address       string  `json:"address" yaml:"address"`
	City          string  `json:"city" yaml:"city"`
	ImageURL      string  `json:"image_url" yaml:"image_url"`
	TotalReviews  int     `json:"total_reviews" yaml:"-"`
	AverageRating float64 `json:"average_rating" yaml:"-"`
}
