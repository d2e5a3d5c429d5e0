package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"hakey-storefront/internal/catalog"
	"hakey-storefront/internal/domain"
)

// writeError maps service errors onto HTTP responses.
func (h *handlers) writeError(c *gin.Context, op string, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "validation failed", "fields": ve.Fields})
		return
	}
	var ce *catalog.Error
	if errors.As(err, &ce) {
		status := http.StatusBadGateway
		if ce.Kind == catalog.KindRejection && ce.Status >= 400 {
			status = ce.Status
		}
		h.logger.Printf("%s: catalog %s status=%d error=%v", op, ce.Kind, ce.Status, err)
		c.JSON(status, gin.H{"message": ce.Message})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	h.logger.Printf("%s: error=%v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
}
