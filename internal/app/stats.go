package app

import (
	"guest_reviews/internal/domain"
)

const recentReviewsPerProperty = 5

// OverallStats averages over every record; ratingless reviews count as 0.
func OverallStats(reviews []domain.Review) domain.OverallStats {
	var out domain.OverallStats
	if len(reviews) == 0 {
		return out
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
		switch r.Status {
		case domain.StatusPending:
			out.PendingReviews++
		case domain.StatusApproved:
			out.ApprovedReviews++
		}
	}
	out.TotalReviews = len(reviews)
	out.AverageRating = roundOne(sum / float64(len(reviews)))
	return out
}

// EmptyPropertyStats is the shape reported for a property without reviews.
func EmptyPropertyStats(id, name string) domain.PropertyStats {
	return domain.PropertyStats{
		PropertyID:         id,
		PropertyName:       name,
		RatingDistribution: emptyHistogram(),
		RecentReviews:      []domain.Review{},
	}
}

func emptyHistogram() map[int]int {
	h := make(map[int]int, 5)
	for i := int(domain.MinRating); i <= int(domain.MaxRating); i++ {
		h[i] = 0
	}
	return h
}

// PropertyStats groups reviews by property in first-seen order. When propertyID is set
// only that property is reported. Properties without reviews do not appear.
func PropertyStats(reviews []domain.Review, propertyID *string) []domain.PropertyStats {
	order := []string{}
	groups := map[string][]domain.Review{}
	for _, r := range reviews {
		if propertyID != nil && r.PropertyID != *propertyID {
			continue
		}
		if _, ok := groups[r.PropertyID]; !ok {
			order = append(order, r.PropertyID)
		}
		groups[r.PropertyID] = append(groups[r.PropertyID], r)
	}

	out := make([]domain.PropertyStats, 0, len(order))
	for _, id := range order {
		out = append(out, statsFor(groups[id]))
	}
	return out
}

func statsFor(rs []domain.Review) domain.PropertyStats {
	ps := EmptyPropertyStats(rs[0].PropertyID, rs[0].PropertyName)
	ps.TotalReviews = len(rs)

	var sum float64
	var rated int
	for _, r := range rs {
		if r.Ratingless {
			continue
		}
		sum += r.Rating
		rated++
		ps.RatingDistribution[int(r.Rating)]++
	}
	if rated > 0 {
		ps.AverageRating = roundOne(sum / float64(rated))
	}

	recent := SortReviews(rs, SortByDate, true)
	if len(recent) > recentReviewsPerProperty {
		recent = recent[:recentReviewsPerProperty]
	}
	ps.RecentReviews = recent
	return ps
}

// BuildAnalytics computes the dashboard distributions. Rating buckets and sentiment
// are shares of rated reviews, so ratingless records do not dilute them; the source
// breakdown counts every review. A rating falls in the bucket of its integer part
// (3.5 is a 3, hence neutral).
func BuildAnalytics(reviews []domain.Review) domain.Analytics {
	out := domain.Analytics{
		RatingDistribution: []domain.RatingBucket{},
		SourceDistribution: []domain.SourceCount{},
	}

	hist := emptyHistogram()
	bySource := map[domain.Source]int{}
	var rated, positive, neutral, negative int
	for _, r := range reviews {
		bySource[r.Source]++
		if r.Ratingless {
			continue
		}
		rated++
		b := int(r.Rating)
		hist[b]++
		switch {
		case b >= 4:
			positive++
		case b == 3:
			neutral++
		default:
			negative++
		}
	}

	if rated > 0 {
		for i := int(domain.MinRating); i <= int(domain.MaxRating); i++ {
			out.RatingDistribution = append(out.RatingDistribution, domain.RatingBucket{
				Rating:     i,
				Count:      hist[i],
				Percentage: percent(hist[i], rated),
			})
		}
	}
	for _, src := range domain.Sources {
		if n := bySource[src]; n > 0 {
			out.SourceDistribution = append(out.SourceDistribution, domain.SourceCount{Source: src, Count: n})
		}
	}
	out.Sentiment = []domain.SentimentShare{
		{Label: "Positive", Value: percent(positive, rated)},
		{Label: "Neutral", Value: percent(neutral, rated)},
		{Label: "Negative", Value: percent(negative, rated)},
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundOne(float64(n) * 100 / float64(total))
}
