package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports per-component status strings, "ok" when healthy.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]string
}

type HealthHandler struct {
	version string
	checker HealthChecker
	now     func() time.Time
}

// NewHealthHandler builds the handler. checker may be nil when no database
// is connected.
func NewHealthHandler(version string, checker HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, checker: checker, now: time.Now}
}

// Health godoc
//
//	@Summary		Health Check
//	@Description	Returns status 200 if the service is running. deep=true also pings the databases.
//	@Tags			Health
//	@Produce		json
//	@Param			deep	query		bool	false	"Ping databases"
//	@Success		200		{object}	model.HealthResponse
//	@Failure		503		{object}	model.HealthResponse
//	@Router			/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	res := model.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Version:   h.version,
	}
	status := http.StatusOK

	if c.Query("deep") == "true" && h.checker != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		res.Checks = h.checker.HealthCheck(ctx)
		for _, v := range res.Checks {
			if v != "ok" {
				res.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
	}
	c.JSON(status, res)
}
