package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type Booking struct {
	ID               int64
	ServiceID        int64
	CustomerID       int64
	ProviderID       int64 // snapshot of the service's provider at creation
	ScheduledDate    time.Time
	TotalPrice       float64 // snapshot of the service's price at creation
	CustomerNotes    string
	ProviderResponse string
	Status           BookingStatus
	PaymentStatus    PaymentStatus
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActorRelation names who may drive a given transition, relative to the
// booking being changed.
type ActorRelation int

const (
	RelationProvider ActorRelation = iota
	RelationCustomer
	RelationParticipant // either the customer or the provider
)

type transitionKey struct {
	From BookingStatus
	To   BookingStatus
}

// bookingTransitions is the full set of legal status transitions and the
// relation required to perform each. Anything absent here is illegal,
// which also makes rejected, completed and cancelled terminal.
var bookingTransitions = map[transitionKey]ActorRelation{
	{BookingStatusPending, BookingStatusAccepted}:   RelationProvider,
	{BookingStatusPending, BookingStatusRejected}:   RelationProvider,
	{BookingStatusPending, BookingStatusCancelled}:  RelationCustomer,
	{BookingStatusAccepted, BookingStatusCompleted}: RelationParticipant,
	{BookingStatusAccepted, BookingStatusCancelled}: RelationCustomer,
}

// ValidBookingStatus reports whether s is one of the five recognized values.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// TransitionRelation returns the actor relation required to move a booking
// from one status to another. ok is false when the transition is not legal.
func TransitionRelation(from, to BookingStatus) (ActorRelation, bool) {
	rel, ok := bookingTransitions[transitionKey{From: from, To: to}]
	return rel, ok
}

// IsTerminal reports whether no transition leads out of s.
func (s BookingStatus) IsTerminal() bool {
	for key := range bookingTransitions {
		if key.From == s {
			return false
		}
	}
	return true
}

// AllowedBy checks the actor against the required relation on this booking.
func (b *Booking) AllowedBy(rel ActorRelation, actorID int64) bool {
	switch rel {
	case RelationProvider:
		return actorID == b.ProviderID
	case RelationCustomer:
		return actorID == b.CustomerID
	case RelationParticipant:
		return actorID == b.CustomerID || actorID == b.ProviderID
	}
	return false
}

// IsParticipant reports whether the user is either side of the booking.
func (b *Booking) IsParticipant(userID int64) bool {
	return userID == b.CustomerID || userID == b.ProviderID
}

// MarkSettled stamps the completion time and flips the payment flag.
// Completion currently implies settlement; a real payment capture step
// would replace the body of this method.
func (b *Booking) MarkSettled(now time.Time) {
	b.CompletedAt = &now
	b.PaymentStatus = PaymentStatusPaid
}
