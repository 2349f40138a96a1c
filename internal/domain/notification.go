package domain

import "time"

const (
	NotificationTypeNewBooking = "new_booking"
	NotificationTypeNewReview  = "new_review"
	// booking status change notifications use "booking_" + the new status
	NotificationTypeBookingPrefix = "booking_"
)

type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	RelatedID int64
	CreatedAt time.Time
}
