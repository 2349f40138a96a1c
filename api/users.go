package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvekslers/servimarket/internal/repository"
	"github.com/dvekslers/servimarket/internal/service/discovery"
	"github.com/dvekslers/servimarket/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users     users.UserUseCase
	discovery discovery.DiscoveryUseCase
}

type updateProfileRequest struct {
	Name         *string  `json:"name"`
	Phone        *string  `json:"phone"`
	Address      *string  `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Bio          *string  `json:"bio"`
	PortfolioURL *string  `json:"portfolio_url"`
}

type profileResponse struct {
	UserID       int64          `json:"user_id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	Role         string         `json:"role"`
	Address      string         `json:"address,omitempty"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Bio          string         `json:"bio,omitempty"`
	PortfolioURL string         `json:"portfolio_url,omitempty"`
	IsVerified   bool           `json:"is_verified"`
	ProfileImage string         `json:"profile_image,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Stats        *statsResponse `json:"stats,omitempty"`
}

type statsResponse struct {
	TotalServices int     `json:"total_services"`
	AvgRating     float64 `json:"avg_rating"`
	TotalReviews  int     `json:"total_reviews"`
	CompletedJobs int     `json:"completed_jobs"`
}

type providerListingResponse struct {
	UserID        int64    `json:"user_id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone,omitempty"`
	Address       string   `json:"address,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Bio           string   `json:"bio,omitempty"`
	IsVerified    bool     `json:"is_verified"`
	ProfileImage  string   `json:"profile_image,omitempty"`
	ServiceCount  int      `json:"service_count"`
	CompletedJobs int      `json:"completed_jobs"`
	AvgRating     float64  `json:"avg_rating"`
	ReviewCount   int      `json:"review_count"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
}

type providerPageResponse struct {
	Providers []providerListingResponse `json:"providers"`
	Meta      pageMetadata              `json:"meta"`
}

func NewUserHandler(users users.UserUseCase, discovery discovery.DiscoveryUseCase) *UserHandler {
	return &UserHandler{users: users, discovery: discovery}
}

func (h *UserHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/providers", h.listProviders)
	router.GET("/:id", h.get)
	router.PUT("/:id", auth, h.update)
	router.PUT("/:id/upgrade-to-provider", auth, h.upgrade)
}

func (h *UserHandler) listProviders(c *gin.Context) {
	input := discovery.SearchProvidersInput{Origin: originParam(c)}
	input.Limit, input.Offset = pageParams(c)

	page, err := h.discovery.SearchProviders(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	providers := make([]providerListingResponse, 0, len(page.Items))
	for _, p := range page.Items {
		providers = append(providers, providerListingResponse{
			UserID:        p.UserID,
			Name:          p.Name,
			Email:         p.Email,
			Phone:         p.Phone,
			Address:       p.Address,
			Latitude:      p.Latitude,
			Longitude:     p.Longitude,
			Bio:           p.Bio,
			IsVerified:    p.IsVerified,
			ProfileImage:  p.ProfileImage,
			ServiceCount:  p.ServiceCount,
			CompletedJobs: p.CompletedJobs,
			AvgRating:     p.AvgRating,
			ReviewCount:   p.ReviewCount,
			DistanceKm:    p.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, providerPageResponse{
		Providers: providers,
		Meta:      pageMetadata{Total: page.Total, Limit: page.Limit, Offset: page.Offset, HasMore: page.HasMore},
	})
}

func (h *UserHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := profileResponse{
		UserID:       profile.ID,
		Name:         profile.Name,
		Email:        profile.Email,
		Phone:        profile.Phone,
		Role:         string(profile.Role),
		Address:      profile.Address,
		Latitude:     profile.Latitude,
		Longitude:    profile.Longitude,
		Bio:          profile.Bio,
		PortfolioURL: profile.PortfolioURL,
		IsVerified:   profile.IsVerified,
		ProfileImage: profile.ProfileImage,
		CreatedAt:    profile.CreatedAt,
	}
	if profile.Stats != nil {
		resp.Stats = &statsResponse{
			TotalServices: profile.Stats.TotalServices,
			AvgRating:     profile.Stats.AvgRating,
			TotalReviews:  profile.Stats.TotalReviews,
			CompletedJobs: profile.Stats.CompletedJobs,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.users.UpdateProfile(c.Request.Context(), actor, id, repository.ProfileUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Bio:          req.Bio,
		PortfolioURL: req.PortfolioURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated successfully"})
}

func (h *UserHandler) upgrade(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.users.UpgradeToProvider(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully upgraded to provider account"})
}
