package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/service/review"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service review.ReviewUseCase
}

type createReviewRequest struct {
	BookingID           int64  `json:"booking_id"`
	Rating              int    `json:"rating"`
	Comment             string `json:"comment"`
	CommunicationRating *int   `json:"communication_rating"`
	QualityRating       *int   `json:"quality_rating"`
	TimelinessRating    *int   `json:"timeliness_rating"`
}

type reviewResponseRequest struct {
	ProviderResponse string `json:"provider_response"`
}

type reviewResponse struct {
	ReviewID            int64     `json:"review_id"`
	BookingID           int64     `json:"booking_id"`
	ServiceID           int64     `json:"service_id"`
	CustomerID          int64     `json:"customer_id"`
	ProviderID          int64     `json:"provider_id"`
	Rating              int       `json:"rating"`
	Comment             string    `json:"comment,omitempty"`
	CommunicationRating *int      `json:"communication_rating,omitempty"`
	QualityRating       *int      `json:"quality_rating,omitempty"`
	TimelinessRating    *int      `json:"timeliness_rating,omitempty"`
	ProviderResponse    string    `json:"provider_response,omitempty"`
	CustomerName        string    `json:"customer_name,omitempty"`
	CustomerImage       string    `json:"customer_image,omitempty"`
	ServiceTitle        string    `json:"service_title,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

type reviewPageResponse struct {
	Reviews []reviewResponse   `json:"reviews"`
	Meta    reviewPageMetadata `json:"meta"`
}

type reviewPageMetadata struct {
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Averages averagesResponse `json:"averages"`
}

type averagesResponse struct {
	Rating        float64 `json:"avg_rating"`
	Communication float64 `json:"avg_communication"`
	Quality       float64 `json:"avg_quality"`
	Timeliness    float64 `json:"avg_timeliness"`
}

func NewReviewHandler(service review.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("", auth, h.create)
	router.GET("/service/:serviceId", h.listForService)
	router.GET("/provider/:providerId", h.listForProvider)
	router.PUT("/:id/response", auth, h.respond)
	router.DELETE("/:id", auth, h.delete)
}

func (h *ReviewHandler) create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.CreateReview(c.Request.Context(), actor.UserID, review.CreateReviewInput{
		BookingID:           req.BookingID,
		Rating:              req.Rating,
		Comment:             req.Comment,
		CommunicationRating: req.CommunicationRating,
		QualityRating:       req.QualityRating,
		TimelinessRating:    req.TimelinessRating,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(r))
}

func (h *ReviewHandler) listForService(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Param("serviceId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}
	limit, offset := pageParams(c)

	page, err := h.service.ListServiceReviews(c.Request.Context(), serviceID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewPageResponse(page))
}

func (h *ReviewHandler) listForProvider(c *gin.Context) {
	providerID, err := strconv.ParseInt(c.Param("providerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}
	limit, offset := pageParams(c)

	page, err := h.service.ListProviderReviews(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewPageResponse(page))
}

func (h *ReviewHandler) respond(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}
	var req reviewResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RespondToReview(c.Request.Context(), actor.UserID, id, req.ProviderResponse); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "response added successfully"})
}

func (h *ReviewHandler) delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), actor.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted successfully"})
}

func toReviewResponse(r *domain.Review) reviewResponse {
	return reviewResponse{
		ReviewID:            r.ID,
		BookingID:           r.BookingID,
		ServiceID:           r.ServiceID,
		CustomerID:          r.CustomerID,
		ProviderID:          r.ProviderID,
		Rating:              r.Rating,
		Comment:             r.Comment,
		CommunicationRating: r.CommunicationRating,
		QualityRating:       r.QualityRating,
		TimelinessRating:    r.TimelinessRating,
		ProviderResponse:    r.ProviderResponse,
		CreatedAt:           r.CreatedAt,
	}
}

func toReviewPageResponse(page *review.ReviewPage) reviewPageResponse {
	reviews := make([]reviewResponse, 0, len(page.Reviews))
	for i := range page.Reviews {
		entry := &page.Reviews[i]
		r := toReviewResponse(&entry.Review)
		r.CustomerName = entry.CustomerName
		r.CustomerImage = entry.CustomerImage
		r.ServiceTitle = entry.ServiceTitle
		reviews = append(reviews, r)
	}
	return reviewPageResponse{
		Reviews: reviews,
		Meta: reviewPageMetadata{
			Total:  page.Total,
			Limit:  page.Limit,
			Offset: page.Offset,
			Averages: averagesResponse{
				Rating:        page.Averages.Rating,
				Communication: page.Averages.Communication,
				Quality:       page.Averages.Quality,
				Timeliness:    page.Averages.Timeliness,
			},
		},
	}
}

func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
