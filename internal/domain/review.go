package domain

import "time"

type Review struct {
	ID        int64
	BookingID int64
	// ServiceID, CustomerID and ProviderID are copied from the booking when
	// the review is created and never re-derived afterwards.
	ServiceID           int64
	CustomerID          int64
	ProviderID          int64
	Rating              int
	Comment             string
	CommunicationRating *int
	QualityRating       *int
	TimelinessRating    *int
	ProviderResponse    string
	CreatedAt           time.Time
}

// RatingAverages are the aggregate rating dimensions over a set of reviews.
type RatingAverages struct {
	Rating        float64
	Communication float64
	Quality       float64
	Timeliness    float64
}
