package api

import (
	"errors"
	"net/http"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps domain error kinds onto HTTP statuses. Store failures
// come back as a bare 500: their cause belongs in logs, not responses.
func respondError(c *gin.Context, err error) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	message := domainErr.Message
	switch domainErr.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindStoreFailure:
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
