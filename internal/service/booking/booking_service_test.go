package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, upd repository.StatusUpdate) (*domain.Booking, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) GetListing(ctx context.Context, id int64) (*domain.ServiceListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceListing), args.Error(1)
}

func (m *MockServiceRepository) Search(ctx context.Context, filter domain.ServiceFilter) ([]domain.ServiceListing, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ServiceListing), args.Error(1)
}

func (m *MockServiceRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.ServiceListing, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]domain.ServiceListing), args.Error(1)
}

func (m *MockServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) Update(ctx context.Context, id int64, upd repository.ServiceUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockServiceRepository) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(bookings *MockBookingRepository, services *MockServiceRepository, notifier *MockNotifier, producer *MockProducer) *BookingService {
	return &BookingService{
		bookings:    bookings,
		services:    services,
		notifier:    notifier,
		producer:    producer,
		eventsTopic: "booking-events",
		log:         zap.NewNop(),
		now:         func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockServices := &MockServiceRepository{}
	mockNotifier := &MockNotifier{}
	mockProducer := &MockProducer{}
	service := newTestService(mockBookings, mockServices, mockNotifier, mockProducer)

	ctx := context.Background()
	svc := &domain.Service{ID: 5, ProviderID: 3, Price: 150.0, IsActive: true}

	mockServices.On("GetByID", ctx, int64(5)).Return(svc, nil).Once()
	mockBookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockNotifier.On("Notify", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{
		ServiceID:     5,
		ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		CustomerNotes: "please come before noon",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, booking.PaymentStatus)
	assert.Equal(t, int64(7), booking.CustomerID)

	mockBookings.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

// The price and provider on the booking come from the service row at
// creation time, so later service edits cannot change existing bookings.
func TestBookingService_CreateBooking_SnapshotsPriceAndProvider(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockServices := &MockServiceRepository{}
	service := newTestService(mockBookings, mockServices, &MockNotifier{}, nil)
	service.notifier = nil
	service.producer = nil

	ctx := context.Background()
	svc := &domain.Service{ID: 5, ProviderID: 42, Price: 99.5, IsActive: true}

	mockServices.On("GetByID", ctx, int64(5)).Return(svc, nil).Once()
	mockBookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{
		ServiceID:     5,
		ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, 99.5, booking.TotalPrice)
	assert.Equal(t, int64(42), booking.ProviderID)
}

func TestBookingService_CreateBooking_ProviderForbidden(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockServices := &MockServiceRepository{}
	service := newTestService(mockBookings, mockServices, &MockNotifier{}, &MockProducer{})

	_, err := service.CreateBooking(context.Background(), domain.Actor{UserID: 3, Role: domain.RoleProvider},
		CreateBookingInput{ServiceID: 5, ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)})

	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.Contains(t, err.Error(), "only customers can create bookings")
	mockServices.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	mockBookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_MissingFields(t *testing.T) {
	service := newTestService(&MockBookingRepository{}, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})
	ctx := context.Background()

	_, err := service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{ScheduledDate: time.Now()})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{ServiceID: 5})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestBookingService_CreateBooking_InactiveService(t *testing.T) {
	mockServices := &MockServiceRepository{}
	service := newTestService(&MockBookingRepository{}, mockServices, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockServices.On("GetByID", ctx, int64(5)).
		Return(&domain.Service{ID: 5, IsActive: false}, nil).Once()

	_, err := service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{
		ServiceID:     5,
		ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	})

	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Contains(t, err.Error(), "service not found or inactive")
}

func TestBookingService_CreateBooking_ServiceNotFound(t *testing.T) {
	mockServices := &MockServiceRepository{}
	service := newTestService(&MockBookingRepository{}, mockServices, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockServices.On("GetByID", ctx, int64(5)).
		Return(nil, domain.NotFoundf("service not found")).Once()

	_, err := service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{
		ServiceID:     5,
		ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	})

	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

// A notification failure must not fail the booking itself.
func TestBookingService_CreateBooking_NotificationFailureIgnored(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockServices := &MockServiceRepository{}
	mockNotifier := &MockNotifier{}
	mockProducer := &MockProducer{}
	service := newTestService(mockBookings, mockServices, mockNotifier, mockProducer)

	ctx := context.Background()
	svc := &domain.Service{ID: 5, ProviderID: 3, Price: 150.0, IsActive: true}

	mockServices.On("GetByID", ctx, int64(5)).Return(svc, nil).Once()
	mockBookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockNotifier.On("Notify", ctx, mock.Anything).Return(domain.StoreFailure("insert notification", errors.New("redis down"))).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, CreateBookingInput{
		ServiceID:     5,
		ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.NotNil(t, booking)
}



func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:            10,
		ServiceID:     5,
		CustomerID:    7,
		ProviderID:    3,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		TotalPrice:    150.0,
	}
}

func TestBookingService_TransitionStatus_ProviderAccepts(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockNotifier := &MockNotifier{}
	mockProducer := &MockProducer{}
	service := newTestService(mockBookings, &MockServiceRepository{}, mockNotifier, mockProducer)

	ctx := context.Background()
	booking := pendingBooking()
	updated := *booking
	updated.Status = domain.BookingStatusAccepted

	mockBookings.On("GetByID", ctx, int64(10)).Return(booking, nil).Once()
	mockBookings.On("UpdateStatus", ctx, mock.MatchedBy(func(upd repository.StatusUpdate) bool {
		return upd.FromStatus == domain.BookingStatusPending &&
			upd.ToStatus == domain.BookingStatusAccepted &&
			upd.CompletedAt == nil && upd.PaymentStatus == nil
	})).Return(&updated, nil).Once()
	mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 7 && n.Title == "Booking Accepted" &&
			n.Message == "Your booking has been accepted by the provider" &&
			n.Type == "booking_accepted"
	})).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", "10", mock.Anything).Return(nil).Once()

	result, err := service.TransitionStatus(ctx, domain.Actor{UserID: 3, Role: domain.RoleProvider}, 10,
		TransitionInput{Status: domain.BookingStatusAccepted})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusAccepted, result.Status)
	mockNotifier.AssertExpectations(t)
}

func TestBookingService_TransitionStatus_CustomerCannotAccept(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("GetByID", ctx, int64(10)).Return(pendingBooking(), nil).Once()

	_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, 10,
		TransitionInput{Status: domain.BookingStatusAccepted})

	assert.True(t, domain.IsKind(err, domain.KindForbidden))
	assert.Contains(t, err.Error(), "only the provider can accept or reject bookings")
}

func TestBookingService_TransitionStatus_ProviderCannotCancel(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("GetByID", ctx, int64(10)).Return(pendingBooking(), nil).Once()

	_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 3, Role: domain.RoleProvider}, 10,
		TransitionInput{Status: domain.BookingStatusCancelled})

	assert.True(t, domain.IsKind(err, domain.KindForbidden))
	assert.Contains(t, err.Error(), "only the customer can cancel bookings")
}

func TestBookingService_TransitionStatus_StrangerForbidden(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("GetByID", ctx, int64(10)).Return(pendingBooking(), nil).Once()

	_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 99, Role: domain.RoleProvider}, 10,
		TransitionInput{Status: domain.BookingStatusAccepted})

	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

// Terminal states admit no further transitions regardless of the actor.
func TestBookingService_TransitionStatus_TerminalStates(t *testing.T) {
	terminal := []domain.BookingStatus{
		domain.BookingStatusRejected,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
	}
	targets := []domain.BookingStatus{
		domain.BookingStatusAccepted,
		domain.BookingStatusRejected,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
	}

	for _, from := range terminal {
		for _, to := range targets {
			if from == to {
				continue
			}
			mockBookings := &MockBookingRepository{}
			service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

			ctx := context.Background()
			booking := pendingBooking()
			booking.Status = from
			mockBookings.On("GetByID", ctx, int64(10)).Return(booking, nil).Once()

			_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 3, Role: domain.RoleProvider}, 10,
				TransitionInput{Status: to})

			assert.True(t, domain.IsKind(err, domain.KindConflict),
				"transition %s -> %s must be rejected", from, to)
			assert.Contains(t, err.Error(), "already "+string(from))
		}
	}
}

func TestBookingService_TransitionStatus_PendingCannotComplete(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("GetByID", ctx, int64(10)).Return(pendingBooking(), nil).Once()

	_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 3, Role: domain.RoleProvider}, 10,
		TransitionInput{Status: domain.BookingStatusCompleted})

	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "cannot transition booking from pending to completed")
}

func TestBookingService_TransitionStatus_UnknownStatus(t *testing.T) {
	service := newTestService(&MockBookingRepository{}, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	_, err := service.TransitionStatus(context.Background(), domain.Actor{UserID: 3}, 10,
		TransitionInput{Status: "confirmed"})

	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

// Completing an accepted booking stamps the completion time and marks the
// booking paid in the same update.
func TestBookingService_TransitionStatus_CompleteSettlesPayment(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockNotifier := &MockNotifier{}
	mockProducer := &MockProducer{}
	service := newTestService(mockBookings, &MockServiceRepository{}, mockNotifier, mockProducer)

	ctx := context.Background()
	booking := pendingBooking()
	booking.Status = domain.BookingStatusAccepted

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := *booking
	updated.Status = domain.BookingStatusCompleted
	updated.PaymentStatus = domain.PaymentStatusPaid
	updated.CompletedAt = &now

	mockBookings.On("GetByID", ctx, int64(10)).Return(booking, nil).Once()
	mockBookings.On("UpdateStatus", ctx, mock.MatchedBy(func(upd repository.StatusUpdate) bool {
		return upd.ToStatus == domain.BookingStatusCompleted &&
			upd.CompletedAt != nil && upd.CompletedAt.Equal(now) &&
			upd.PaymentStatus != nil && *upd.PaymentStatus == domain.PaymentStatusPaid
	})).Return(&updated, nil).Once()
	mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 7 && n.Title == "Service Completed" &&
			n.Message == "The service has been completed. Please leave a review!"
	})).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", "10", mock.Anything).Return(nil).Once()

	result, err := service.TransitionStatus(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, 10,
		TransitionInput{Status: domain.BookingStatusCompleted})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, result.PaymentStatus)
	require.NotNil(t, result.CompletedAt)
	mockBookings.AssertExpectations(t)
}

// The cancellation notice goes to the provider; every other notice goes to
// the customer.
func TestBookingService_TransitionStatus_CancelNotifiesProvider(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockNotifier := &MockNotifier{}
	mockProducer := &MockProducer{}
	service := newTestService(mockBookings, &MockServiceRepository{}, mockNotifier, mockProducer)

	ctx := context.Background()
	booking := pendingBooking()
	updated := *booking
	updated.Status = domain.BookingStatusCancelled

	mockBookings.On("GetByID", ctx, int64(10)).Return(booking, nil).Once()
	mockBookings.On("UpdateStatus", ctx, mock.Anything).Return(&updated, nil).Once()
	mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 3 && n.Title == "Booking Cancelled" &&
			n.Message == "The customer has cancelled the booking"
	})).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", "10", mock.Anything).Return(nil).Once()

	_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, 10,
		TransitionInput{Status: domain.BookingStatusCancelled})

	require.NoError(t, err)
	mockNotifier.AssertExpectations(t)
}

// A concurrent transition surfaces as a conflict from the guarded update.
func TestBookingService_TransitionStatus_LostRace(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("GetByID", ctx, int64(10)).Return(pendingBooking(), nil).Once()
	mockBookings.On("UpdateStatus", ctx, mock.Anything).
		Return(nil, domain.Conflictf("booking status changed concurrently")).Once()

	_, err := service.TransitionStatus(ctx, domain.Actor{UserID: 3, Role: domain.RoleProvider}, 10,
		TransitionInput{Status: domain.BookingStatusAccepted})

	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "changed concurrently")
}

func TestBookingService_GetBooking_ParticipantOnly(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("GetByID", ctx, int64(10)).Return(pendingBooking(), nil)

	_, err := service.GetBooking(ctx, domain.Actor{UserID: 7}, 10)
	assert.NoError(t, err)

	_, err = service.GetBooking(ctx, domain.Actor{UserID: 3}, 10)
	assert.NoError(t, err)

	_, err = service.GetBooking(ctx, domain.Actor{UserID: 99}, 10)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestBookingService_ListCustomerBookings_OwnOnly(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := newTestService(mockBookings, &MockServiceRepository{}, &MockNotifier{}, &MockProducer{})

	ctx := context.Background()
	mockBookings.On("ListByCustomer", ctx, int64(7)).Return([]domain.Booking{*pendingBooking()}, nil).Once()

	list, err := service.ListCustomerBookings(ctx, domain.Actor{UserID: 7}, 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = service.ListCustomerBookings(ctx, domain.Actor{UserID: 8}, 7)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}
