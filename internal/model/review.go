package model

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a product. At most one per (user, product).
type Review struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	ProductID          uuid.UUID `json:"product_id"`
	Stars              int       `json:"stars"`
	Title              string    `json:"title"`
	Message            string    `json:"message"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	IsApproved         bool      `json:"is_approved"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateReviewRequest rates a product.
type CreateReviewRequest struct {
	Stars   int    `json:"stars"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (r CreateReviewRequest) Validate() error {
	var v Validator
	v.Check(r.Stars >= 1 && r.Stars <= 5, "stars", "Stars must be between 1 and 5.")
	v.Required(r.Title, "title")
	v.Required(r.Message, "message")
	return v.Err()
}

// ReviewStats summarises the approved reviews of a product.
type ReviewStats struct {
	AverageRating      *float64       `json:"average_rating"`
	ReviewCount        int            `json:"review_count"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// StarCounts holds the number of reviews per star value, index 1..5.
type StarCounts [6]int

// Stats aggregates counts into the public summary.
func (c StarCounts) Stats() ReviewStats {
	stats := ReviewStats{RatingDistribution: make(map[string]int, 5)}
	sum := 0
	for stars := 1; stars <= 5; stars++ {
		stats.RatingDistribution[strconv.Itoa(stars)] = c[stars]
		stats.ReviewCount += c[stars]
		sum += stars * c[stars]
	}
	if stats.ReviewCount > 0 {
		avg := RoundRating(float64(sum) / float64(stats.ReviewCount))
		stats.AverageRating = &avg
	}
	return stats
}

// AverageRating returns the mean of stars rounded to one decimal, or nil when
// there are none.
func AverageRating(stars []int) *float64 {
	var counts StarCounts
	for _, s := range stars {
		if s >= 1 && s <= 5 {
			counts[s]++
		}
	}
	return counts.Stats().AverageRating
}

// RoundRating rounds to one decimal place, halves away from zero.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
