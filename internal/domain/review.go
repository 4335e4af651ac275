package domain

import (
	"fmt"
	"strings"
	"time"
)

type Source string

const (
	SourceHostaway Source = "hostaway"
	SourceGoogle   Source = "google"
	SourceAirbnb   Source = "airbnb"
	SourceBooking  Source = "booking"
	SourceManual   Source = "manual"
	SourceUnknown  Source = "unknown"
)

// Sources lists the closed source set in display order.
var Sources = []Source{SourceHostaway, SourceGoogle, SourceAirbnb, SourceBooking, SourceManual, SourceUnknown}

func ParseSource(s string) (Source, error) {
	v := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, src := range Sources {
		if v == src {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown source %q", ErrValidation, s)
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch v := Status(strings.ToLower(strings.TrimSpace(s))); v {
	case StatusPending, StatusApproved, StatusRejected:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

const (
	MinRating = 1.0
	MaxRating = 5.0
)

// Review is the canonical, source-agnostic review record.
// Rating is 0 and Ratingless is true when the upstream record carried no usable rating.
type Review struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"property_id"`
	PropertyName string    `json:"property_name"`
	GuestName    string    `json:"guest_name"`
	Rating       float64   `json:"rating"`
	Ratingless   bool      `json:"ratingless"`
	Comment      string    `json:"comment"`
	Date         time.Time `json:"date"`
	Source       Source    `json:"source"`
	Status       Status    `json:"status"`
	Response     *string   `json:"response,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatusUpdate is the moderation payload accepted for a single review.
type StatusUpdate struct {
	Status   string  `json:"status" validate:"required,oneof=pending approved rejected"`
	Response *string `json:"response,omitempty" validate:"omitempty,max=2000"`
}
