package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryHandler_list(t *testing.T) {
	mockCatalog := &MockCatalogUseCase{}
	handler := NewCategoryHandler(mockCatalog)

	c, w := testContext(t, "GET", "/categories", "", nil)
	mockCatalog.On("ListCategories", c.Request.Context()).
		Return([]domain.Category{{ID: 1, Name: "Cleaning", ServiceCount: 7}}, nil).Once()

	handler.list(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Categories []categoryResponse `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 1)
	assert.Equal(t, "Cleaning", resp.Categories[0].Name)
	assert.Equal(t, 7, resp.Categories[0].ServiceCount)
}

func TestCategoryHandler_get_NotFound(t *testing.T) {
	mockCatalog := &MockCatalogUseCase{}
	handler := NewCategoryHandler(mockCatalog)

	c, w := testContext(t, "GET", "/categories/9", "", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	mockCatalog.On("GetCategory", c.Request.Context(), int64(9)).
		Return(nil, domain.NotFoundf("category not found")).Once()

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
