package handlers

import (
	"net/http"

	"dentwork_backend/internal/models"
	"dentwork_backend/internal/services"
	"dentwork_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes регистрирует маршруты аутентификации.
// authRequired - middleware проверки JWT для защищенной подгруппы,
// adminOnly - ограничение подгруппы /admin ролью администратора.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired, adminOnly gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/job-seeker/register", h.RegisterJobSeeker)
		auth.POST("/employer/register", h.RegisterEmployer)

		auth.POST("/job-seeker/login", h.loginWithRole(models.RoleJobSeeker))
		auth.POST("/employer/login", h.loginWithRole(models.RoleEmployer))
		auth.POST("/admin/login", h.loginWithRole(models.RoleAdmin))
		auth.POST("/login", h.UnifiedLogin)

		auth.POST("/request-password-reset", h.RequestPasswordReset)
		auth.POST("/reset-password", h.ResetPassword)

		protected := auth.Group("")
		protected.Use(authRequired)
		{
			protected.GET("/me", h.Me)
			protected.PUT("/change-password", h.ChangePassword)
		}

		// Новых админов создает только существующий админ
		admin := auth.Group("/admin")
		admin.Use(authRequired, adminOnly)
		{
			admin.POST("/register", h.RegisterAdmin)
		}
	}
}

func (h *AuthHandler) RegisterJobSeeker(c *gin.Context) {
	var req dto.RegisterJobSeekerRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.RegisterJobSeeker(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *AuthHandler) RegisterEmployer(c *gin.Context) {
	var req dto.RegisterEmployerRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.RegisterEmployer(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	account, err := h.authService.RegisterAdmin(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// loginWithRole - логин в раздел, жестко заданный эндпоинтом
func (h *AuthHandler) loginWithRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}

		response, err := h.authService.Login(role, &req)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// UnifiedLogin - единая форма логина без указания роли
func (h *AuthHandler) UnifiedLogin(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.UnifiedLogin(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, role, ok := h.GetAuthClaims(c)
	if !ok {
		return
	}

	account, err := h.authService.CurrentUser(role, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, role, ok := h.GetAuthClaims(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(role, userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password successfully changed",
	})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	// Ответ успешен, как только токен сохранен в БД;
	// отправка письма идет через фоновую очередь
	if err := h.authService.RequestPasswordReset(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.PasswordResetConfirm
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password successfully reset",
	})
}
