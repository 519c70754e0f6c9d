package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	// Маршруты конвейера, только после проверки учетных данных
	protected := router.Group("", BasicAuthMiddleware(h.gate, h.logger))
	{
		protected.POST("/analyze", h.analyzeIncident)
		protected.GET("/incidents", h.listIncidents)
	}

	// Живая лента событий
	router.GET("/ws", h.liveFeed)

	// Маршрут Health-check
	router.GET("/system/health", h.healthCheck)
}
