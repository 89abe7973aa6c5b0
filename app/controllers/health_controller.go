package controllers

import (
	"net/http"

	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/ctx"
	"github.com/resor-app/resor/pkg/response"
)

type HealthController struct {
	service *services.HealthService
}

func NewHealthController(service *services.HealthService) *HealthController {
	return &HealthController{service: service}
}

func (c *HealthController) Welcome(x *ctx.Context) {
	x.Success(map[string]string{"message": "Welcome to resor"})
}

// Health answers 200 when every backend pings, 503 otherwise.
func (c *HealthController) Health(x *ctx.Context) {
	report, ok := c.service.Check(x.Context())
	if !ok {
		response.JSON(x.W, http.StatusServiceUnavailable, report)
		return
	}
	x.Success(report)
}
