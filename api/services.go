package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/geo"
	"github.com/dvekslers/servimarket/internal/repository"
	"github.com/dvekslers/servimarket/internal/service/catalog"
	"github.com/dvekslers/servimarket/internal/service/discovery"
	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	discovery discovery.DiscoveryUseCase
	catalog   catalog.CatalogUseCase
}

type createServiceRequest struct {
	CategoryID       int64    `json:"category_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	Location         string   `json:"location"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ServiceType      string   `json:"service_type"`
	DurationEstimate string   `json:"duration_estimate"`
}

type updateServiceRequest struct {
	CategoryID       *int64   `json:"category_id"`
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	Price            *float64 `json:"price"`
	Location         *string  `json:"location"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ServiceType      *string  `json:"service_type"`
	DurationEstimate *string  `json:"duration_estimate"`
	IsActive         *bool    `json:"is_active"`
}

type serviceListingResponse struct {
	ServiceID        int64     `json:"service_id"`
	ProviderID       int64     `json:"provider_id"`
	CategoryID       int64     `json:"category_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`
	Location         string    `json:"location,omitempty"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	ServiceType      string    `json:"service_type"`
	DurationEstimate string    `json:"duration_estimate,omitempty"`
	ProviderName     string    `json:"provider_name"`
	ProviderPhone    string    `json:"provider_phone,omitempty"`
	ProviderVerified bool      `json:"provider_verified"`
	CategoryName     string    `json:"category_name"`
	AvgRating        float64   `json:"avg_rating"`
	ReviewCount      int       `json:"review_count"`
	DistanceKm       *float64  `json:"distance_km,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type servicePageResponse struct {
	Services []serviceListingResponse `json:"services"`
	Meta     pageMetadata             `json:"meta"`
}

type serviceDetailResponse struct {
	serviceListingResponse
	RecentReviews []reviewResponse `json:"recent_reviews"`
}

type pageMetadata struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewServiceHandler(discovery discovery.DiscoveryUseCase, catalog catalog.CatalogUseCase) *ServiceHandler {
	return &ServiceHandler{discovery: discovery, catalog: catalog}
}

func (h *ServiceHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("", h.search)
	router.GET("/:id", h.get)
	router.GET("/provider/:providerId", h.listForProvider)
	router.POST("", auth, h.create)
	router.PUT("/:id", auth, h.update)
	router.DELETE("/:id", auth, h.delete)
}

func (h *ServiceHandler) search(c *gin.Context) {
	input := discovery.SearchServicesInput{
		Filter: domain.ServiceFilter{Search: c.Query("search")},
		Origin: originParam(c),
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		input.Filter.CategoryID = &id
	}
	if v := c.Query("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min price"})
			return
		}
		input.Filter.MinPrice = &p
	}
	if v := c.Query("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max price"})
			return
		}
		input.Filter.MaxPrice = &p
	}
	input.Limit, input.Offset = pageParams(c)

	page, err := h.discovery.SearchServices(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	services := make([]serviceListingResponse, 0, len(page.Items))
	for i := range page.Items {
		services = append(services, toServiceListingResponse(&page.Items[i]))
	}
	c.JSON(http.StatusOK, servicePageResponse{
		Services: services,
		Meta:     pageMetadata{Total: page.Total, Limit: page.Limit, Offset: page.Offset, HasMore: page.HasMore},
	})
}

func (h *ServiceHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	detail, err := h.discovery.GetService(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := serviceDetailResponse{
		serviceListingResponse: toServiceListingResponse(&detail.ServiceListing),
		RecentReviews:          make([]reviewResponse, 0, len(detail.RecentReviews)),
	}
	for i := range detail.RecentReviews {
		entry := &detail.RecentReviews[i]
		r := toReviewResponse(&entry.Review)
		r.CustomerName = entry.CustomerName
		resp.RecentReviews = append(resp.RecentReviews, r)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceHandler) listForProvider(c *gin.Context) {
	providerID, err := strconv.ParseInt(c.Param("providerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	listings, err := h.discovery.ListProviderServices(c.Request.Context(), providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	services := make([]serviceListingResponse, 0, len(listings))
	for i := range listings {
		services = append(services, toServiceListingResponse(&listings[i]))
	}
	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.catalog.CreateService(c.Request.Context(), actor, catalog.CreateServiceInput{
		CategoryID:       req.CategoryID,
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		ServiceType:      req.ServiceType,
		DurationEstimate: req.DurationEstimate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service_id": service.ID})
}

func (h *ServiceHandler) update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}
	var req updateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.catalog.UpdateService(c.Request.Context(), actor, id, repository.ServiceUpdate{
		CategoryID:       req.CategoryID,
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		ServiceType:      req.ServiceType,
		DurationEstimate: req.DurationEstimate,
		IsActive:         req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service updated successfully"})
}

func (h *ServiceHandler) delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service deleted successfully"})
}

func toServiceListingResponse(l *domain.ServiceListing) serviceListingResponse {
	return serviceListingResponse{
		ServiceID:        l.ID,
		ProviderID:       l.ProviderID,
		CategoryID:       l.CategoryID,
		Title:            l.Title,
		Description:      l.Description,
		Price:            l.Price,
		Location:         l.Location,
		Latitude:         l.Latitude,
		Longitude:        l.Longitude,
		ServiceType:      l.ServiceType,
		DurationEstimate: l.DurationEstimate,
		ProviderName:     l.ProviderName,
		ProviderPhone:    l.ProviderPhone,
		ProviderVerified: l.ProviderVerified,
		CategoryName:     l.CategoryName,
		AvgRating:        l.AvgRating,
		ReviewCount:      l.ReviewCount,
		DistanceKm:       l.DistanceKm,
		CreatedAt:        l.CreatedAt,
	}
}

// originParam parses the observer coordinate; both values must be present
// for location sorting to kick in.
func originParam(c *gin.Context) *geo.Point {
	latStr, lonStr := c.Query("latitude"), c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil
	}
	return &geo.Point{Lat: lat, Lon: lon}
}
