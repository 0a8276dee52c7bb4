package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SeedAPI triggers the backend's demo-data load.
type SeedAPI interface {
	Seed(ctx context.Context) error
}

type HomeHandler struct {
	api    SeedAPI
	logger *slog.Logger
}

func NewHomeHandler(a SeedAPI, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{api: a, logger: logger}
}

func (h *HomeHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", gin.H{"Active": "home"})
}

// Seed asks the backend to load its demo dataset, then sends the browser
// to the projects page to show the result.
func (h *HomeHandler) Seed(c *gin.Context) {
	if err := h.api.Seed(c.Request.Context()); err != nil {
		h.logger.Error("seeding demo data failed", "error", err)
		c.HTML(http.StatusBadGateway, "home.tmpl", gin.H{
			"Active": "home",
			"Alert":  "Could not load the demo data. Is the backend running?",
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/projects")
}
