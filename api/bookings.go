package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ServiceID     int64     `json:"service_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	CustomerNotes string    `json:"customer_notes"`
}

type transitionRequest struct {
	Status           string  `json:"status"`
	ProviderResponse *string `json:"provider_response"`
}

type bookingResponse struct {
	BookingID        int64      `json:"booking_id"`
	ServiceID        int64      `json:"service_id"`
	CustomerID       int64      `json:"customer_id"`
	ProviderID       int64      `json:"provider_id"`
	ScheduledDate    time.Time  `json:"scheduled_date"`
	TotalPrice       float64    `json:"total_price"`
	CustomerNotes    string     `json:"customer_notes,omitempty"`
	ProviderResponse string     `json:"provider_response,omitempty"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("", auth, h.create)
	router.GET("/:id", auth, h.get)
	router.PUT("/:id/status", auth, h.updateStatus)
	router.GET("/customer/:customerId", auth, h.listForCustomer)
	router.GET("/provider/:providerId", auth, h.listForProvider)
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), actor, booking.CreateBookingInput{
		ServiceID:     req.ServiceID,
		ScheduledDate: req.ScheduledDate,
		CustomerNotes: req.CustomerNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	b, err := h.service.TransitionStatus(c.Request.Context(), actor, id, booking.TransitionInput{
		Status:           domain.BookingStatus(req.Status),
		ProviderResponse: req.ProviderResponse,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) listForCustomer(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}

	bookings, err := h.service.ListCustomerBookings(c.Request.Context(), actor, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) listForProvider(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	providerID, err := strconv.ParseInt(c.Param("providerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	bookings, err := h.service.ListProviderBookings(c.Request.Context(), actor, providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:        b.ID,
		ServiceID:        b.ServiceID,
		CustomerID:       b.CustomerID,
		ProviderID:       b.ProviderID,
		ScheduledDate:    b.ScheduledDate,
		TotalPrice:       b.TotalPrice,
		CustomerNotes:    b.CustomerNotes,
		ProviderResponse: b.ProviderResponse,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		CompletedAt:      b.CompletedAt,
		CreatedAt:        b.CreatedAt,
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}
