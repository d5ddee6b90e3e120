package routes

import (
	"net/http"

	"dentwork_backend/internal/handlers"
	"dentwork_backend/internal/middleware"
	"dentwork_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authRequired gin.HandlerFunc,
) {
	ginRouter.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, authRequired, adminOnly)
	}
}
