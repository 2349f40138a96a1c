package booking

import (
	"context"
	"strconv"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/kafka"
	"github.com/dvekslers/servimarket/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error)
	TransitionStatus(ctx context.Context, actor domain.Actor, bookingID int64, input TransitionInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error)
	ListCustomerBookings(ctx context.Context, actor domain.Actor, customerID int64) ([]domain.Booking, error)
	ListProviderBookings(ctx context.Context, actor domain.Actor, providerID int64) ([]domain.Booking, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings    repository.BookingRepository
	services    repository.ServiceRepository
	notifier    Notifier
	producer    Producer
	eventsTopic string
	log         *zap.Logger
	now         func() time.Time
}

type CreateBookingInput struct {
	ServiceID     int64     `json:"service_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	CustomerNotes string    `json:"customer_notes"`
}

type TransitionInput struct {
	Status           domain.BookingStatus `json:"status"`
	ProviderResponse *string              `json:"provider_response"`
}

func NewBookingService(
	bookings repository.BookingRepository,
	services repository.ServiceRepository,
	notifier Notifier,
	producer Producer,
	eventsTopic string,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:    bookings,
		services:    services,
		notifier:    notifier,
		producer:    producer,
		eventsTopic: eventsTopic,
		log:         log,
		now:         time.Now,
	}
}

// transitionNotice describes the single notification each successful
// transition produces: who gets it and what it says.
type transitionNotice struct {
	toProvider bool
	title      string
	message    string
}

var transitionNotices = map[domain.BookingStatus]transitionNotice{
	domain.BookingStatusAccepted:  {title: "Booking Accepted", message: "Your booking has been accepted by the provider"},
	domain.BookingStatusRejected:  {title: "Booking Rejected", message: "Your booking has been rejected"},
	domain.BookingStatusCompleted: {title: "Service Completed", message: "The service has been completed. Please leave a review!"},
	domain.BookingStatusCancelled: {toProvider: true, title: "Booking Cancelled", message: "The customer has cancelled the booking"},
}

func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.Forbiddenf("only customers can create bookings")
	}
	if input.ServiceID <= 0 {
		return nil, domain.Validationf("service id is required")
	}
	if input.ScheduledDate.IsZero() {
		return nil, domain.Validationf("scheduled date is required")
	}

	svc, err := s.services.GetByID(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, domain.NotFoundf("service not found or inactive")
	}

	// Price and provider are frozen here: later edits to the service must
	// not leak into this booking.
	booking := &domain.Booking{
		ServiceID:     svc.ID,
		CustomerID:    actor.UserID,
		ProviderID:    svc.ProviderID,
		ScheduledDate: input.ScheduledDate,
		TotalPrice:    svc.Price,
		CustomerNotes: input.CustomerNotes,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notify(ctx, &domain.Notification{
		UserID:    booking.ProviderID,
		Type:      domain.NotificationTypeNewBooking,
		Title:     "New Booking Request",
		Message:   "You have a new booking request for your service",
		RelatedID: booking.ID,
	})
	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *BookingService) TransitionStatus(ctx context.Context, actor domain.Actor, bookingID int64, input TransitionInput) (*domain.Booking, error) {
	target := input.Status
	if !domain.ValidBookingStatus(target) {
		return nil, domain.Conflictf("invalid booking status %q", string(target))
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	rel, ok := domain.TransitionRelation(booking.Status, target)
	if !ok {
		if booking.Status.IsTerminal() {
			return nil, domain.Conflictf("booking is already %s", string(booking.Status))
		}
		return nil, domain.Conflictf("cannot transition booking from %s to %s", string(booking.Status), string(target))
	}
	if !booking.AllowedBy(rel, actor.UserID) {
		return nil, forbiddenFor(target)
	}

	upd := repository.StatusUpdate{
		BookingID:        booking.ID,
		FromStatus:       booking.Status,
		ToStatus:         target,
		ProviderResponse: input.ProviderResponse,
	}
	if target == domain.BookingStatusCompleted {
		settled := *booking
		settled.MarkSettled(s.now())
		upd.CompletedAt = settled.CompletedAt
		upd.PaymentStatus = &settled.PaymentStatus
	}

	updated, err := s.bookings.UpdateStatus(ctx, upd)
	if err != nil {
		return nil, err
	}

	notice := transitionNotices[target]
	recipient := updated.CustomerID
	if notice.toProvider {
		recipient = updated.ProviderID
	}
	s.notify(ctx, &domain.Notification{
		UserID:    recipient,
		Type:      domain.NotificationTypeBookingPrefix + string(target),
		Title:     notice.title,
		Message:   notice.message,
		RelatedID: updated.ID,
	})
	s.publish(ctx, "booking_"+string(target), updated)
	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsParticipant(actor.UserID) {
		return nil, domain.Forbiddenf("not authorized to view this booking")
	}
	return booking, nil
}

func (s *BookingService) ListCustomerBookings(ctx context.Context, actor domain.Actor, customerID int64) ([]domain.Booking, error) {
	if actor.UserID != customerID {
		return nil, domain.Forbiddenf("not authorized")
	}
	return s.bookings.ListByCustomer(ctx, customerID)
}

func (s *BookingService) ListProviderBookings(ctx context.Context, actor domain.Actor, providerID int64) ([]domain.Booking, error) {
	if actor.UserID != providerID {
		return nil, domain.Forbiddenf("not authorized")
	}
	return s.bookings.ListByProvider(ctx, providerID)
}

func forbiddenFor(target domain.BookingStatus) error {
	switch target {
	case domain.BookingStatusAccepted, domain.BookingStatusRejected:
		return domain.Forbiddenf("only the provider can accept or reject bookings")
	case domain.BookingStatusCancelled:
		return domain.Forbiddenf("only the customer can cancel bookings")
	default:
		return domain.Forbiddenf("not authorized")
	}
}

func (s *BookingService) notify(ctx context.Context, n *domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("booking notification failed",
			zap.Int64("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		ServiceID:  booking.ServiceID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		Status:     string(booking.Status),
		TotalPrice: booking.TotalPrice,
		OccurredAt: s.now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(booking.ID, 10), event); err != nil {
		s.log.Warn("publish booking event failed",
			zap.String("type", eventType), zap.Int64("booking_id", booking.ID), zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingService)(nil)
