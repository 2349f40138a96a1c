package api

import (
	"net/http"
	"strconv"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service catalog.CatalogUseCase
}

type categoryResponse struct {
	CategoryID   int64  `json:"category_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Icon         string `json:"icon,omitempty"`
	ServiceCount int    `json:"service_count"`
}

func NewCategoryHandler(service catalog.CatalogUseCase) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *CategoryHandler) list(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (h *CategoryHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	category, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(category))
}

func toCategoryResponse(cat *domain.Category) categoryResponse {
	return categoryResponse{
		CategoryID:   cat.ID,
		Name:         cat.Name,
		Description:  cat.Description,
		Icon:         cat.Icon,
		ServiceCount: cat.ServiceCount,
	}
}
