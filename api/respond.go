package api

import (
	"net/http"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain error kinds to HTTP status codes. Upstream
// unavailability is reported to the caller like a bad request; the services
// already logged it as an infrastructure failure.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindBadRequest, domain.KindUpstreamUnavailable:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
