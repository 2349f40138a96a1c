package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, actor domain.Actor, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) TransitionStatus(ctx context.Context, actor domain.Actor, bookingID int64, input booking.TransitionInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListCustomerBookings(ctx context.Context, actor domain.Actor, customerID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, actor, customerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListProviderBookings(ctx context.Context, actor domain.Actor, providerID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, actor, providerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func testContext(t *testing.T, method, path, body string, actor *domain.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if actor != nil {
		c.Set(actorContextKey, *actor)
	}
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := &domain.Actor{UserID: 7, Role: domain.RoleCustomer}
	c, w := testContext(t, "POST", "/bookings",
		`{"service_id": 5, "scheduled_date": "2025-07-01T10:00:00Z", "customer_notes": "morning please"}`, actor)

	created := &domain.Booking{
		ID: 10, ServiceID: 5, CustomerID: 7, ProviderID: 3,
		Status: domain.BookingStatusPending, PaymentStatus: domain.PaymentStatusUnpaid,
		TotalPrice: 150, ScheduledDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	}
	mockService.On("CreateBooking", c.Request.Context(), *actor, mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.ServiceID == 5 && in.CustomerNotes == "morning please"
	})).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.BookingID)
	assert.Equal(t, "pending", resp.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_ProviderForbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := &domain.Actor{UserID: 3, Role: domain.RoleProvider}
	c, w := testContext(t, "POST", "/bookings",
		`{"service_id": 5, "scheduled_date": "2025-07-01T10:00:00Z"}`, actor)

	mockService.On("CreateBooking", c.Request.Context(), *actor, mock.Anything).
		Return(nil, domain.Forbiddenf("only customers can create bookings")).Once()

	handler.create(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "only customers can create bookings")
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_Unauthenticated(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := testContext(t, "POST", "/bookings", `{"service_id": 5}`, nil)
	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandler_updateStatus(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := &domain.Actor{UserID: 3, Role: domain.RoleProvider}
	c, w := testContext(t, "PUT", "/bookings/10/status", `{"status": "accepted"}`, actor)
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	updated := &domain.Booking{ID: 10, Status: domain.BookingStatusAccepted}
	mockService.On("TransitionStatus", c.Request.Context(), *actor, int64(10), mock.MatchedBy(func(in booking.TransitionInput) bool {
		return in.Status == domain.BookingStatusAccepted && in.ProviderResponse == nil
	})).Return(updated, nil).Once()

	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_updateStatus_IllegalTransition(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := &domain.Actor{UserID: 3, Role: domain.RoleProvider}
	c, w := testContext(t, "PUT", "/bookings/10/status", `{"status": "accepted"}`, actor)
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	mockService.On("TransitionStatus", c.Request.Context(), *actor, int64(10), mock.Anything).
		Return(nil, domain.Conflictf("booking is already cancelled")).Once()

	handler.updateStatus(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already cancelled")
}

func TestBookingHandler_updateStatus_MissingStatus(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	actor := &domain.Actor{UserID: 3, Role: domain.RoleProvider}
	c, w := testContext(t, "PUT", "/bookings/10/status", `{}`, actor)
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	handler.updateStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_get_BadID(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	actor := &domain.Actor{UserID: 7}
	c, w := testContext(t, "GET", "/bookings/abc", "", actor)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_get_Forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := &domain.Actor{UserID: 99}
	c, w := testContext(t, "GET", "/bookings/10", "", actor)
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	mockService.On("GetBooking", c.Request.Context(), *actor, int64(10)).
		Return(nil, domain.Forbiddenf("not authorized to view this booking")).Once()

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_listForCustomer(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	actor := &domain.Actor{UserID: 7}
	c, w := testContext(t, "GET", "/bookings/customer/7", "", actor)
	c.Params = gin.Params{{Key: "customerId", Value: "7"}}

	mockService.On("ListCustomerBookings", c.Request.Context(), *actor, int64(7)).
		Return([]domain.Booking{{ID: 10, CustomerID: 7}}, nil).Once()

	handler.listForCustomer(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}
